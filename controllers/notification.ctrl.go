package controllers

import (
	"net/http"

	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// NotificationController : in-app notification inbox
type NotificationController struct {
	svc *service.ClassFundService
}

func NewNotificationController(svc *service.ClassFundService) *NotificationController {
	return &NotificationController{svc: svc}
}

func (controller *NotificationController) ListNotifications(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := controller.svc.ListNotifications(c.Request().Context(), userId, unreadOnly)
	if err != nil {
		c.Logger().Errorf("Failed to list notifications: user_id:%v error: %v", userId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (controller *NotificationController) MarkNotificationRead(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	notificationId, ok := pathID(c, "notification_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := controller.svc.MarkNotificationRead(c.Request().Context(), userId, notificationId); err != nil {
		return svcError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
