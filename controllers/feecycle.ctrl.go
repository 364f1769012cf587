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

// FeeCycleController : fee cycle endpoints, treasurer-like role required
// for all mutations.
type FeeCycleController struct {
	svc *service.ClassFundService
}

func NewFeeCycleController(svc *service.ClassFundService) *FeeCycleController {
	return &FeeCycleController{svc: svc}
}

type FeeCycleRequestBody struct {
	Name            string `json:"name" validate:"required"`
	Term            string `json:"term"`
	AmountPerMember int64  `json:"amount_per_member" validate:"required,gt=0"`
	DueDate         string `json:"due_date"` // YYYY-MM-DD, optional
	AllowLate       bool   `json:"allow_late"`
}

func (body *FeeCycleRequestBody) dueDate() (bun.NullTime, bool) {
	if body.DueDate == "" {
		return bun.NullTime{}, true
	}
	parsed, err := time.Parse("2006-01-02", body.DueDate)
	if err != nil {
		return bun.NullTime{}, false
	}
	return bun.NullTime{Time: parsed}, true
}

func (controller *FeeCycleController) ListFeeCycles(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureMember(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	cycles, err := controller.svc.ListFeeCycles(c.Request().Context(), classId)
	if err != nil {
		c.Logger().Errorf("Failed to list fee cycles: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, cycles)
}

func (controller *FeeCycleController) CreateFeeCycle(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	var body FeeCycleRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	dueDate, ok := body.dueDate()
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	cycle, err := controller.svc.CreateFeeCycle(c.Request().Context(), &models.FeeCycle{
		ClassID:         classId,
		Name:            body.Name,
		Term:            body.Term,
		AmountPerMember: body.AmountPerMember,
		DueDate:         dueDate,
		AllowLate:       body.AllowLate,
	})
	if err != nil {
		c.Logger().Errorf("Failed to create fee cycle: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, cycle)
}

// findCycleForTreasurer loads a cycle by path params and checks the
// caller is treasurer-like in its class.
func (controller *FeeCycleController) findCycleForTreasurer(c echo.Context) (*models.FeeCycle, error) {
	userId := c.Get("UserID").(int64)
	cycleId, ok := pathID(c, "cycle_id")
	if !ok {
		return nil, service.ErrNotFound
	}
	cycle, err := controller.svc.FindFeeCycle(c.Request().Context(), cycleId)
	if err != nil {
		return nil, err
	}
	if _, err := controller.svc.EnsureTreasurerLike(c.Request().Context(), cycle.ClassID, userId); err != nil {
		return nil, err
	}
	return cycle, nil
}

func (controller *FeeCycleController) UpdateFeeCycle(c echo.Context) error {
	cycle, err := controller.findCycleForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}

	var body FeeCycleRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	dueDate, ok := body.dueDate()
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	updated, err := controller.svc.UpdateFeeCycle(c.Request().Context(), cycle, body.Name, body.Term, body.AmountPerMember, dueDate, body.AllowLate)
	if err != nil {
		c.Logger().Errorf("Failed to update fee cycle: cycle_id:%v error: %v", cycle.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// ActivateFeeCycle opens the cycle for collection and issues one invoice
// per active member.
func (controller *FeeCycleController) ActivateFeeCycle(c echo.Context) error {
	cycle, err := controller.findCycleForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}

	activated, err := controller.svc.ActivateFeeCycle(c.Request().Context(), cycle)
	if err != nil {
		c.Logger().Errorf("Failed to activate fee cycle: cycle_id:%v error: %v", cycle.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, activated)
}

func (controller *FeeCycleController) CloseFeeCycle(c echo.Context) error {
	cycle, err := controller.findCycleForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}

	closed, err := controller.svc.CloseFeeCycle(c.Request().Context(), cycle)
	if err != nil {
		c.Logger().Errorf("Failed to close fee cycle: cycle_id:%v error: %v", cycle.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, closed)
}

func (controller *FeeCycleController) FeeCycleProgress(c echo.Context) error {
	cycle, err := controller.findCycleForTreasurer(c)
	if err != nil {
		return svcError(c, err)
	}

	progress, err := controller.svc.FeeCycleProgress(c.Request().Context(), cycle)
	if err != nil {
		c.Logger().Errorf("Failed to compute fee cycle progress: cycle_id:%v error: %v", cycle.ID, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, progress)
}
