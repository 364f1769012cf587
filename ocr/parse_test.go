package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmountWithThousandSeparator(t *testing.T) {
	res := ParseRawText("Chuyen khoan thanh cong 200.000 VND")
	assert.True(t, res.Ok)
	assert.Equal(t, int64(200000), res.Amount)
}

func TestParsePlainAmount(t *testing.T) {
	res := ParseRawText("So tien: 150000 đ noi dung lop 12")
	assert.True(t, res.Ok)
	assert.Equal(t, int64(150000), res.Amount)
}

func TestParseMethodKeywords(t *testing.T) {
	assert.Equal(t, "momo", ParseRawText("MoMo giao dich 50.000d").Method)
	assert.Equal(t, "zalopay", ParseRawText("ZaloPay 50.000").Method)
	assert.Equal(t, "bank", ParseRawText("Chuyển khoản 50.000").Method)
}

func TestParseTxnRef(t *testing.T) {
	res := ParseRawText("Chuyen khoan 200.000 REF: FT23099X8 noi dung lop 5")
	assert.Equal(t, "FT23099X8", res.TxnRef)
}

func TestParseEmptyText(t *testing.T) {
	res := ParseRawText("   ")
	assert.False(t, res.Ok)
	assert.Empty(t, res.RawText)
}

func TestParseNoAmountIsNotOk(t *testing.T) {
	res := ParseRawText("giao dich khong ro so tien")
	assert.False(t, res.Ok)
	assert.Equal(t, "giao dich khong ro so tien", res.RawText)
}

func TestNoteCarriesFullRawText(t *testing.T) {
	raw := "Chuyen khoan 200.000 LOP 42 hoc phi"
	res := ParseRawText(raw)
	assert.Equal(t, raw, res.Note)
}
