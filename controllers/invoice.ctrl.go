package controllers

import (
	"net/http"

	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// InvoiceController : invoice listing and treasurer actions
type InvoiceController struct {
	svc *service.ClassFundService
}

func NewInvoiceController(svc *service.ClassFundService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

func (controller *InvoiceController) MyInvoices(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoices, err := controller.svc.MyInvoices(c.Request().Context(), classId, userId)
	if err != nil {
		c.Logger().Errorf("Failed to list invoices: class_id:%v user_id:%v error: %v", classId, userId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

// findInvoiceForMember loads an invoice by path param and authorizes the
// caller: the invoice's member always may see it, anyone else needs a
// treasurer-like role in the class.
func (controller *InvoiceController) findInvoiceForMember(c echo.Context) (*models.Invoice, error) {
	userId := c.Get("UserID").(int64)
	invoiceId, ok := pathID(c, "invoice_id")
	if !ok {
		return nil, service.ErrNotFound
	}
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), invoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.FeeCycle == nil {
		return nil, service.ErrNotFound
	}
	member, err := controller.svc.EnsureMember(c.Request().Context(), invoice.FeeCycle.ClassID, userId)
	if err != nil {
		return nil, err
	}
	if invoice.MemberID != member.ID {
		if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), invoice.FeeCycle.ClassID, userId); err != nil {
			return nil, err
		}
	}
	return invoice, nil
}

func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	invoice, err := controller.findInvoiceForMember(c)
	if err != nil {
		return svcError(c, err)
	}

	detail, err := controller.svc.InvoiceDetail(c.Request().Context(), invoice)
	if err != nil {
		c.Logger().Errorf("Failed to load invoice detail: invoice_id:%v error: %v", invoice.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (controller *InvoiceController) cycleForTreasurer(c echo.Context) (int64, error) {
	userId := c.Get("UserID").(int64)
	cycleId, ok := pathID(c, "cycle_id")
	if !ok {
		return 0, service.ErrNotFound
	}
	cycle, err := controller.svc.FindFeeCycle(c.Request().Context(), cycleId)
	if err != nil {
		return 0, err
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), cycle.ClassID, userId); err != nil {
		return 0, err
	}
	return cycleId, nil
}

func (controller *InvoiceController) CycleInvoices(c echo.Context) error {
	cycleId, err := controller.cycleForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}

	invoices, err := controller.svc.ListCycleInvoices(c.Request().Context(), cycleId)
	if err != nil {
		c.Logger().Errorf("Failed to list cycle invoices: cycle_id:%v error: %v", cycleId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

// UnpaidInvoices is the treasurers' follow-up view: members who have not
// fully paid for a cycle yet.
func (controller *InvoiceController) UnpaidInvoices(c echo.Context) error {
	cycleId, err := controller.cycleForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}

	invoices, err := controller.svc.UnpaidInvoices(c.Request().Context(), cycleId)
	if err != nil {
		c.Logger().Errorf("Failed to list unpaid invoices: cycle_id:%v error: %v", cycleId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

// MarkInvoicePaid confirms an invoice as settled, recording a verified
// cash payment for any remainder, treasurer only.
func (controller *InvoiceController) MarkInvoicePaid(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	invoiceId, ok := pathID(c, "invoice_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), invoiceId)
	if err != nil {
		return svcError(c, err)
	}
	if invoice.FeeCycle == nil {
		return svcError(c, service.ErrNotFound)
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), invoice.FeeCycle.ClassID, userId); err != nil {
		return svcError(c, err)
	}

	paid, err := controller.svc.MarkInvoicePaid(c.Request().Context(), invoice, userId)
	if err != nil {
		c.Logger().Errorf("Failed to mark invoice paid: invoice_id:%v error: %v", invoice.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, paid)
}
