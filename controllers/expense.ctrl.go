package controllers

import (
	"net/http"
	"time"

	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// ExpenseController : fund spending records, treasurer-like role required
// for all mutations.
type ExpenseController struct {
	svc *service.ClassFundService
}

func NewExpenseController(svc *service.ClassFundService) *ExpenseController {
	return &ExpenseController{svc: svc}
}

type ExpenseRequestBody struct {
	Title      string `form:"title" validate:"required"`
	Amount     int64  `form:"amount" validate:"gte=0"`
	Note       string `form:"note"`
	FeeCycleID int64  `form:"fee_cycle_id"`
	SpentAt    string `form:"spent_at"` // YYYY-MM-DD, optional
}

func (body *ExpenseRequestBody) spentAt() (bun.NullTime, bool) {
	if body.SpentAt == "" {
		return bun.NullTime{}, true
	}
	parsed, err := time.Parse("2006-01-02", body.SpentAt)
	if err != nil {
		return bun.NullTime{}, false
	}
	return bun.NullTime{Time: parsed}, true
}

func (controller *ExpenseController) ListExpenses(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureMember(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	expenses, err := controller.svc.ListExpenses(c.Request().Context(), classId)
	if err != nil {
		c.Logger().Errorf("Failed to list expenses: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, expenses)
}

// CreateExpense accepts a multipart form with the expense fields and an
// optional receipt image.
func (controller *ExpenseController) CreateExpense(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	var body ExpenseRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	spentAt, ok := body.spentAt()
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	receipt, receiptName, err := formFile(c, "receipt")
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	expense, err := controller.svc.CreateExpense(c.Request().Context(), &models.Expense{
		ClassID:     classId,
		FeeCycleID:  body.FeeCycleID,
		Title:       body.Title,
		Amount:      body.Amount,
		Note:        body.Note,
		CreatedByID: userId,
		SpentAt:     spentAt,
	}, receipt, receiptName)
	if err != nil {
		c.Logger().Errorf("Failed to create expense: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, expense)
}

func (controller *ExpenseController) UpdateExpense(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	expenseId, ok := pathID(c, "expense_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	expense, err := controller.svc.FindExpense(c.Request().Context(), expenseId)
	if err != nil {
		return svcError(c, err)
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), expense.ClassID, userId); err != nil {
		return svcError(c, err)
	}

	var body ExpenseRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	spentAt, ok := body.spentAt()
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	expense.Title = body.Title
	expense.Amount = body.Amount
	expense.Note = body.Note
	expense.FeeCycleID = body.FeeCycleID
	expense.SpentAt = spentAt
	expense, err = controller.svc.UpdateExpense(c.Request().Context(), expense)
	if err != nil {
		c.Logger().Errorf("Failed to update expense: expense_id:%v error: %v", expenseId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, expense)
}

func (controller *ExpenseController) DeleteExpense(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	expenseId, ok := pathID(c, "expense_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	expense, err := controller.svc.FindExpense(c.Request().Context(), expenseId)
	if err != nil {
		return svcError(c, err)
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), expense.ClassID, userId); err != nil {
		return svcError(c, err)
	}

	if err := controller.svc.DeleteExpense(c.Request().Context(), expenseId, expense.ClassID); err != nil {
		c.Logger().Errorf("Failed to delete expense: expense_id:%v error: %v", expenseId, err)
		return svcError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
