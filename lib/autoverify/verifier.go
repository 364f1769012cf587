package autoverify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/classfund/classfund.go/common"
)

// Config carries the decision tunables. It is passed in explicitly so the
// engine stays deterministic under test; nothing here reads ambient state.
type Config struct {
	// Amount rule: a delta within either tolerance passes. With both zero
	// the extracted amount must equal the expected amount exactly.
	AmountToleranceAbs int64
	AmountTolerancePct float64

	// Payee rule: compare the last PayeeTailLen digits of the extracted
	// payee account against the fund account number.
	RequirePayeeMatch bool
	PayeeTailLen      int

	RequireTxnRef bool

	// Note rule: when required, the normalized transfer note must contain
	// one of the expected tokens. When not required a present but unmatched
	// note only produces a NOTE_WEAK soft warning.
	RequireNote     bool
	NoteMustInclude []string
}

// Extracted is the field set the OCR collaborator produced for a proof.
type Extracted struct {
	Amount       int64
	TxnRef       string
	Method       string
	PayeeAccount string
	Note         string
}

// FundAccount is the slice of the class fund account the engine needs.
type FundAccount struct {
	AccountNo string
}

// Input is everything the engine may consult for one payment.
type Input struct {
	ExpectedAmount int64
	PayerName      string
	InvoiceID      int64
	Extracted      Extracted
	Fund           *FundAccount
}

type Decision struct {
	Pass   bool
	Code   string
	Detail string
}

type matchDetail struct {
	Expect   int64   `json:"expect"`
	Found    int64   `json:"found"`
	TxnRef   *string `json:"txn_ref"`
	Note     *string `json:"note"`
	SoftWarn *string `json:"soft_warn"`
}

// Decide runs the verification rules in order; the first failing rule
// short-circuits. It is a pure function over its inputs.
func Decide(in Input, cfg Config) Decision {
	expect := in.ExpectedAmount
	found := in.Extracted.Amount

	if !amountOk(expect, found, cfg.AmountToleranceAbs, cfg.AmountTolerancePct) {
		return fail(common.ReasonAmountMismatch,
			fmt.Sprintf("expected=%d, ocr=%d, tol_abs=%d, tol_pct=%g",
				expect, found, cfg.AmountToleranceAbs, cfg.AmountTolerancePct))
	}

	if cfg.RequirePayeeMatch && in.Fund != nil && in.Fund.AccountNo != "" {
		ocrAcc := strings.TrimSpace(in.Extracted.PayeeAccount)
		if ocrAcc != "" {
			tailLen := cfg.PayeeTailLen
			if tailLen <= 0 {
				tailLen = 6
			}
			expectTail := tail(digits(in.Fund.AccountNo), tailLen)
			foundTail := tail(digits(ocrAcc), tailLen)
			if expectTail == "" || expectTail != foundTail {
				return fail(common.ReasonPayeeMismatch,
					fmt.Sprintf("fund_tail=%s, ocr_tail=%s", expectTail, foundTail))
			}
		}
	}

	if cfg.RequireTxnRef && strings.TrimSpace(in.Extracted.TxnRef) == "" {
		return fail(common.ReasonNoTxnRef, "missing txn_ref")
	}

	note := strings.TrimSpace(in.Extracted.Note)
	var softWarn *string

	if cfg.RequireNote {
		if note == "" {
			return fail(common.ReasonNoNote, "transfer note is empty")
		}
		if !noteMatch(in, note, cfg.NoteMustInclude) {
			return fail(common.ReasonNoteMismatch, fmt.Sprintf("note=%q not matched", note))
		}
	} else if note != "" && !noteMatch(in, note, cfg.NoteMustInclude) {
		warn := common.ReasonNoteWeak
		softWarn = &warn
	}

	detail := matchDetail{
		Expect:   expect,
		Found:    found,
		SoftWarn: softWarn,
	}
	if ref := strings.TrimSpace(in.Extracted.TxnRef); ref != "" {
		detail.TxnRef = &ref
	}
	if note != "" {
		detail.Note = &note
	}
	raw, _ := json.Marshal(detail)

	return Decision{Pass: true, Code: common.ReasonMatchOK, Detail: string(raw)}
}

func amountOk(expect, found, abs int64, pct float64) bool {
	if found <= 0 {
		return false
	}
	delta := expect - found
	if delta < 0 {
		delta = -delta
	}
	if abs > 0 && delta <= abs {
		return true
	}
	if pct > 0 {
		base := expect
		if base < 1 {
			base = 1
		}
		return float64(delta)/float64(base) <= pct
	}
	return expect == found
}

// noteMatch checks the normalized note against the expected tokens: the
// invoice id rendered as "lop {id}" or "invoice {id}", the normalized payer
// name, and any configured extra keywords.
func noteMatch(in Input, noteRaw string, extra []string) bool {
	norm := Normalize(noteRaw)

	tokens := []string{
		fmt.Sprintf("lop %d", in.InvoiceID),
		fmt.Sprintf("invoice %d", in.InvoiceID),
		Normalize(in.PayerName),
	}
	for _, kw := range extra {
		tokens = append(tokens, Normalize(kw))
	}

	for _, tk := range tokens {
		if tk != "" && strings.Contains(norm, tk) {
			return true
		}
	}
	return false
}

func fail(code, detail string) Decision {
	return Decision{Pass: false, Code: code, Detail: detail}
}
