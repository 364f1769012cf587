package autoverify

import (
	"testing"

	"github.com/classfund/classfund.go/common"
	"github.com/stretchr/testify/assert"
)

func noteOffConfig() Config {
	return Config{AmountToleranceAbs: 1000, RequireNote: false}
}

func TestAmountWithinAbsoluteTolerance(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		InvoiceID:      7,
		Extracted:      Extracted{Amount: 200500},
	}
	d := Decide(in, Config{AmountToleranceAbs: 1000})
	assert.True(t, d.Pass)
	assert.Equal(t, common.ReasonMatchOK, d.Code)
}

func TestAmountOutsideBothTolerances(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		Extracted:      Extracted{Amount: 150000},
	}
	d := Decide(in, Config{AmountToleranceAbs: 1000, AmountTolerancePct: 0.01})
	assert.False(t, d.Pass)
	assert.Equal(t, common.ReasonAmountMismatch, d.Code)
}

func TestAmountWithinPercentTolerance(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		Extracted:      Extracted{Amount: 198500},
	}
	d := Decide(in, Config{AmountTolerancePct: 0.01})
	assert.True(t, d.Pass)
}

func TestAmountExactWhenNoTolerance(t *testing.T) {
	in := Input{ExpectedAmount: 200000, Extracted: Extracted{Amount: 200000}}
	assert.True(t, Decide(in, Config{}).Pass)

	in.Extracted.Amount = 200001
	d := Decide(in, Config{})
	assert.False(t, d.Pass)
	assert.Equal(t, common.ReasonAmountMismatch, d.Code)
}

func TestZeroExtractedAmountNeverPasses(t *testing.T) {
	in := Input{ExpectedAmount: 0, Extracted: Extracted{Amount: 0}}
	d := Decide(in, Config{AmountToleranceAbs: 1000})
	assert.False(t, d.Pass)
	assert.Equal(t, common.ReasonAmountMismatch, d.Code)
}

func TestPayeeTailMismatch(t *testing.T) {
	in := Input{
		ExpectedAmount: 100000,
		Extracted:      Extracted{Amount: 100000, PayeeAccount: "0123 456 999"},
		Fund:           &FundAccount{AccountNo: "0123456789"},
	}
	d := Decide(in, Config{RequirePayeeMatch: true, PayeeTailLen: 6})
	assert.False(t, d.Pass)
	assert.Equal(t, common.ReasonPayeeMismatch, d.Code)
}

func TestPayeeTailMatchIgnoresSeparators(t *testing.T) {
	in := Input{
		ExpectedAmount: 100000,
		InvoiceID:      3,
		Extracted:      Extracted{Amount: 100000, PayeeAccount: "0123-456-789", Note: "lop 3"},
		Fund:           &FundAccount{AccountNo: "0123456789"},
	}
	d := Decide(in, Config{RequirePayeeMatch: true, PayeeTailLen: 6, RequireNote: true})
	assert.True(t, d.Pass)
}

func TestPayeeRuleSkippedWithoutFundAccount(t *testing.T) {
	in := Input{
		ExpectedAmount: 100000,
		Extracted:      Extracted{Amount: 100000},
	}
	d := Decide(in, Config{RequirePayeeMatch: true, AmountToleranceAbs: 1000})
	assert.True(t, d.Pass)
}

func TestMissingTxnRef(t *testing.T) {
	in := Input{ExpectedAmount: 100000, Extracted: Extracted{Amount: 100000}}
	d := Decide(in, Config{RequireTxnRef: true})
	assert.False(t, d.Pass)
	assert.Equal(t, common.ReasonNoTxnRef, d.Code)
}

func TestEmptyNoteFailsBeforeSoftWarnLogic(t *testing.T) {
	in := Input{ExpectedAmount: 100000, Extracted: Extracted{Amount: 100000}}
	d := Decide(in, Config{RequireNote: true})
	assert.False(t, d.Pass)
	assert.Equal(t, common.ReasonNoNote, d.Code)
}

func TestNoteMatchIsDiacriticAndCaseInsensitive(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		InvoiceID:      42,
		PayerName:      "Lớp 42", // payer name irrelevant here, note carries the token
		Extracted:      Extracted{Amount: 200000, Note: "Chuyen khoan LOP 42 hoc phi"},
	}
	d := Decide(in, Config{RequireNote: true})
	assert.True(t, d.Pass)

	in.Extracted.Note = "Chuyển khoản Lớp 42 học phí"
	d = Decide(in, Config{RequireNote: true})
	assert.True(t, d.Pass)
}

func TestNoteMatchesPayerName(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		InvoiceID:      9,
		PayerName:      "Nguyễn Văn An",
		Extracted:      Extracted{Amount: 200000, Note: "nguyen van an dong quy"},
	}
	d := Decide(in, Config{RequireNote: true})
	assert.True(t, d.Pass)
}

func TestNoteMismatch(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		InvoiceID:      9,
		PayerName:      "Tran Thi B",
		Extracted:      Extracted{Amount: 200000, Note: "chuyen tien an trua"},
	}
	d := Decide(in, Config{RequireNote: true})
	assert.False(t, d.Pass)
	assert.Equal(t, common.ReasonNoteMismatch, d.Code)
}

func TestConfiguredKeywordMatches(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		InvoiceID:      9,
		Extracted:      Extracted{Amount: 200000, Note: "dong QUY lop thang 9"},
	}
	d := Decide(in, Config{RequireNote: true, NoteMustInclude: []string{"quỹ"}})
	assert.True(t, d.Pass)
}

func TestUnmatchedNoteIsSoftWarnWhenNotRequired(t *testing.T) {
	in := Input{
		ExpectedAmount: 200000,
		InvoiceID:      9,
		PayerName:      "Tran Thi B",
		Extracted:      Extracted{Amount: 200000, Note: "chuyen tien an trua"},
	}
	d := Decide(in, noteOffConfig())
	assert.True(t, d.Pass)
	assert.Equal(t, common.ReasonMatchOK, d.Code)
	assert.Contains(t, d.Detail, common.ReasonNoteWeak)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "lop 42 hoc phi", Normalize("  Lớp 42   học phí "))
	assert.Equal(t, "dong quy", Normalize("Đóng quỹ"))
	assert.Equal(t, "", Normalize("   "))
}
