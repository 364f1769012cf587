package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// 200.000 / 200,000 / 200000 đ / VND
	amountRe = regexp.MustCompile(`(?i)(\d[\d.,]{3,})\s*(đ|vnd|vnđ)?`)
	// CK/CT/TXN/REF followed by an alphanumeric reference
	txnRefRe = regexp.MustCompile(`(?i)(CK|CT|TXN|REF)[\s\-:]*([A-Z0-9\-]{4,})`)
	nonDigit = regexp.MustCompile(`\D`)
)

// ParseRawText applies the field heuristics to raw OCR output. An empty
// raw text, or one with no recognizable amount, yields Ok=false.
func ParseRawText(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}
	}

	res := Result{RawText: raw, Note: raw}

	if m := amountRe.FindStringSubmatch(raw); m != nil {
		num := nonDigit.ReplaceAllString(m[1], "")
		if num != "" {
			if amount, err := strconv.ParseInt(num, 10, 64); err == nil {
				res.Amount = amount
			}
		}
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "momo"):
		res.Method = "momo"
	case strings.Contains(lower, "zalopay"):
		res.Method = "zalopay"
	case strings.Contains(lower, "bank"), strings.Contains(lower, "chuyển khoản"), strings.Contains(lower, "chuyen khoan"):
		res.Method = "bank"
	}

	if m := txnRefRe.FindStringSubmatch(raw); m != nil {
		res.TxnRef = strings.ToUpper(m[2])
	}

	res.Ok = res.Amount > 0
	return res
}
