package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// LedgerController : read-only ledger reconstruction for a class
type LedgerController struct {
	svc *service.ClassFundService
}

func NewLedgerController(svc *service.ClassFundService) *LedgerController {
	return &LedgerController{svc: svc}
}

// GetLedger returns the chronological, running-balance view of the class
// fund. Query params: fee_cycle_id, from, to (YYYY-MM-DD).
func (controller *LedgerController) GetLedger(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if _, err := controller.svc.EnsureMember(c.Request().Context(), classId, userId); err != nil {
		return svcError(c, err)
	}

	filter := service.LedgerFilter{}
	if cycleId, err := strconv.ParseInt(c.QueryParam("fee_cycle_id"), 10, 64); err == nil {
		filter.FeeCycleID = cycleId
	}
	if from := c.QueryParam("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		filter.From = parsed
	}
	if to := c.QueryParam("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		// inclusive end of day
		filter.To = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	ledger, err := controller.svc.ClassLedger(c.Request().Context(), classId, filter)
	if err != nil {
		c.Logger().Errorf("Failed to build ledger: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, ledger)
}
