package ocr

import "context"

// Result is the contract between the extractor and the proof pipeline.
// Ok is false when no usable text or amount could be extracted; the
// pipeline records that as OCR_EMPTY rather than failing.
type Result struct {
	Ok           bool   `json:"ok"`
	RawText      string `json:"raw_text"`
	Amount       int64  `json:"amount"`
	Method       string `json:"method"`
	TxnRef       string `json:"txn_ref"`
	PayeeAccount string `json:"payee_account"`
	Note         string `json:"note"`
	Confidence   int64  `json:"confidence"`
}

// Extractor reads structured transaction data out of a proof image at an
// absolute path. Implementations are treated as unreliable collaborators:
// any error (or panic) is absorbed by the caller, never propagated out of
// the processing pipeline.
type Extractor interface {
	Extract(ctx context.Context, absoluteImagePath string) (Result, error)
}
