package controllers_test

import (
	"testing"

	"github.com/classfund/classfund.go/controllers"
	"github.com/classfund/classfund.go/lib"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

// Zero-amount cycles are rejected up front: every invoice copies the
// cycle amount, and a zero obligation has no meaningful paid state.
func TestFeeCycleRequestRequiresPositiveAmount(t *testing.T) {
	cv := &lib.CustomValidator{Validator: validator.New()}

	assert.Error(t, cv.Validate(&controllers.FeeCycleRequestBody{
		Name:            "Quy 1",
		AmountPerMember: 0,
	}))
	assert.Error(t, cv.Validate(&controllers.FeeCycleRequestBody{
		Name:            "Quy 1",
		AmountPerMember: -500,
	}))
	assert.NoError(t, cv.Validate(&controllers.FeeCycleRequestBody{
		Name:            "Quy 1",
		AmountPerMember: 200000,
	}))
}
