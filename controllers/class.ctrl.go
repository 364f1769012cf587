package controllers

import (
	"net/http"

	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// ClassController : class and membership endpoints
type ClassController struct {
	svc *service.ClassFundService
}

func NewClassController(svc *service.ClassFundService) *ClassController {
	return &ClassController{svc: svc}
}

type CreateClassRequestBody struct {
	Name string `json:"name" validate:"required"`
}

type JoinClassRequestBody struct {
	Code string `json:"code" validate:"required"`
}

type SetRoleRequestBody struct {
	Role string `json:"role" validate:"required,oneof=treasurer member"`
}

func (controller *ClassController) CreateClass(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	var body CreateClassRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create class request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid create class request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	class, err := controller.svc.CreateClass(c.Request().Context(), body.Name, userId)
	if err != nil {
		c.Logger().Errorf("Failed to create class: user_id:%v error: %v", userId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, class)
}

func (controller *ClassController) JoinClass(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	var body JoinClassRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	member, err := controller.svc.JoinClass(c.Request().Context(), body.Code, userId)
	if err != nil {
		c.Logger().Errorf("Failed to join class: user_id:%v error: %v", userId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}

func (controller *ClassController) MyClasses(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	memberships, err := controller.svc.MyClasses(c.Request().Context(), userId)
	if err != nil {
		c.Logger().Errorf("Failed to list classes: user_id:%v error: %v", userId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, memberships)
}

type ClassResponseBody struct {
	Class   *models.Class        `json:"class"`
	Members []models.ClassMember `json:"members"`
	MyRole  string               `json:"my_role"`
}

func (controller *ClassController) GetClass(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	member, err := controller.svc.EnsureMember(c.Request().Context(), classId, userId)
	if err != nil {
		return svcError(c, err)
	}
	class, err := controller.svc.FindClass(c.Request().Context(), classId)
	if err != nil {
		return svcError(c, err)
	}
	members, err := controller.svc.ListMembers(c.Request().Context(), classId)
	if err != nil {
		c.Logger().Errorf("Failed to list members: class_id:%v error: %v", classId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, &ClassResponseBody{
		Class:   class,
		Members: members,
		MyRole:  member.Role,
	})
}

func (controller *ClassController) SetMemberRole(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	classId, ok := pathID(c, "class_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	memberId, ok := pathID(c, "member_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	var body SetRoleRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	member, err := controller.svc.SetMemberRole(c.Request().Context(), classId, userId, memberId, body.Role)
	if err != nil {
		c.Logger().Errorf("Failed to set member role: class_id:%v member_id:%v error: %v", classId, memberId, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}
