package controllers

import (
	"net/http"
	"strconv"

	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// PaymentController : payment submission and the treasurer review queue
type PaymentController struct {
	svc *service.ClassFundService
}

func NewPaymentController(svc *service.ClassFundService) *PaymentController {
	return &PaymentController{svc: svc}
}

type SubmitPaymentRequestBody struct {
	Amount int64  `form:"amount" validate:"required,gt=0"`
	Method string `form:"method" validate:"required,oneof=bank momo zalopay cash"`
	TxnRef string `form:"txn_ref"`
}

type InvalidatePaymentRequestBody struct {
	Reason string `json:"reason" validate:"required"`
	Note   string `json:"note"`
}

type RejectPaymentRequestBody struct {
	Reason string `json:"reason"`
}

// SubmitPayment accepts a multipart form with the payment fields and an
// optional proof image. The response means "accepted for processing":
// auto-verification happens asynchronously.
func (controller *PaymentController) SubmitPayment(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	invoiceId, ok := pathID(c, "invoice_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	var body SubmitPaymentRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load payment request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	proof, proofName, err := formFile(c, "proof")
	if err != nil {
		c.Logger().Errorf("Failed to read proof upload: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.FindInvoice(c.Request().Context(), invoiceId)
	if err != nil {
		return svcError(c, err)
	}
	if invoice.FeeCycle == nil {
		return svcError(c, service.ErrNotFound)
	}
	member, err := controller.svc.EnsureMember(c.Request().Context(), invoice.FeeCycle.ClassID, userId)
	if err != nil {
		return svcError(c, err)
	}

	payment, err := controller.svc.SubmitPayment(c.Request().Context(), invoice, member, &service.SubmitPaymentRequest{
		Amount:    body.Amount,
		Method:    body.Method,
		TxnRef:    body.TxnRef,
		Proof:     proof,
		ProofName: proofName,
	})
	if err != nil {
		c.Logger().Errorf("Failed to submit payment: invoice_id:%v user_id:%v error: %v", invoiceId, userId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// UploadProof attaches or replaces the proof image of a submitted
// payment and re-runs auto-verification.
func (controller *PaymentController) UploadProof(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	paymentId, ok := pathID(c, "payment_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	proof, proofName, err := formFile(c, "proof")
	if err != nil || proof == nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	payment, err := controller.svc.FindPayment(c.Request().Context(), paymentId)
	if err != nil {
		return svcError(c, err)
	}
	payment, err = controller.svc.UploadProof(c.Request().Context(), payment, userId, proof, proofName)
	if err != nil {
		c.Logger().Errorf("Failed to upload proof: payment_id:%v error: %v", paymentId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// findPaymentForTreasurer loads a payment and checks the caller holds a
// treasurer-like role in its class.
func (controller *PaymentController) findPaymentForTreasurer(c echo.Context) (*models.Payment, error) {
	userId := c.Get("UserID").(int64)
	paymentId, ok := pathID(c, "payment_id")
	if !ok {
		return nil, service.ErrNotFound
	}
	payment, err := controller.svc.FindPayment(c.Request().Context(), paymentId)
	if err != nil {
		return nil, err
	}
	if payment.Invoice == nil || payment.Invoice.FeeCycle == nil {
		return nil, service.ErrNotFound
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), payment.Invoice.FeeCycle.ClassID, userId); err != nil {
		return nil, err
	}
	return payment, nil
}

func (controller *PaymentController) GetPayment(c echo.Context) error {
	payment, err := controller.findPaymentForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// ListPayments is the treasurer review queue. Supported query params:
// status, auto_failed=true, limit.
func (controller *PaymentController) ListPayments(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	filter := service.PaymentFilter{
		Status:     c.QueryParam("status"),
		AutoFailed: c.QueryParam("auto_failed") == "true",
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}

	payments, err := controller.svc.ListClassPayments(c.Request().Context(), classId, filter)
	if err != nil {
		c.Logger().Errorf("Failed to list payments: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (controller *PaymentController) VerifyPayment(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	payment, err := controller.findPaymentForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}

	verified, err := controller.svc.VerifyPayment(c.Request().Context(), payment, userId)
	if err != nil {
		c.Logger().Errorf("Failed to verify payment: payment_id:%v error: %v", payment.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, verified)
}

func (controller *PaymentController) RejectPayment(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	payment, err := controller.findPaymentForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}
	var body RejectPaymentRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	rejected, err := controller.svc.RejectPayment(c.Request().Context(), payment, userId, body.Reason)
	if err != nil {
		c.Logger().Errorf("Failed to reject payment: payment_id:%v error: %v", payment.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, rejected)
}

// InvalidatePayment reverses a previously verified payment. Terminal.
func (controller *PaymentController) InvalidatePayment(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	payment, err := controller.findPaymentForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}
	var body InvalidatePaymentRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invalidated, err := controller.svc.InvalidatePayment(c.Request().Context(), payment, userId, body.Reason, body.Note)
	if err != nil {
		c.Logger().Errorf("Failed to invalidate payment: payment_id:%v error: %v", payment.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, invalidated)
}
