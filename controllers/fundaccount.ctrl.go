package controllers

import (
	"net/http"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// FundAccountController : the class's bank routing details, used by
// members to pay and by the auto-verifier for payee matching.
type FundAccountController struct {
	svc *service.ClassFundService
}

func NewFundAccountController(svc *service.ClassFundService) *FundAccountController {
	return &FundAccountController{svc: svc}
}

type FundAccountRequestBody struct {
	Name          string `form:"name" validate:"required"`
	BankName      string `form:"bank_name"`
	AccountNo     string `form:"account_no"`
	AccountHolder string `form:"account_holder"`
}

func (controller *FundAccountController) GetFundAccount(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureMember(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	fund, err := controller.svc.FindFundAccount(c.Request().Context(), classId)
	if err != nil {
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, fund)
}

// UpsertFundAccount creates or replaces the class fund account. Accepts a
// multipart form with an optional payment QR image.
func (controller *FundAccountController) UpsertFundAccount(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	var body FundAccountRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	fund := &models.FundAccount{
		ClassID:       classId,
		Name:          body.Name,
		BankName:      body.BankName,
		AccountNo:     body.AccountNo,
		AccountHolder: body.AccountHolder,
	}
	if qr, qrName, err := formFile(c, "qr_image"); err == nil && qr != nil {
		stored, err := controller.svc.Storage.Store(qr, common.StorageCategoryReceipts, qrName)
		if err != nil {
			c.Logger().Errorf("Failed to store QR image: class_id:%v error: %v", classId, err)
			return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
		}
		fund.QrImagePath = stored
	}

	fund, err := controller.svc.UpsertFundAccount(c.Request().Context(), fund)
	if err != nil {
		c.Logger().Errorf("Failed to upsert fund account: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, fund)
}
