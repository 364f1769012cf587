package controllers

import (
	"net/http"

	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// UserController : user provisioning and profile. Token issuance happens
// in the identity service; this app only stores the account record.
type UserController struct {
	svc *service.ClassFundService
}

func NewUserController(svc *service.ClassFundService) *UserController {
	return &UserController{svc: svc}
}

type CreateUserRequestBody struct {
	Login string `json:"login" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// CreateUser provisions an account record, admin token required.
func (controller *UserController) CreateUser(c echo.Context) error {
	var body CreateUserRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, err := controller.svc.CreateUser(c.Request().Context(), body.Login, body.Name, body.Email, body.Phone)
	if err != nil {
		c.Logger().Errorf("Failed to create user: login:%v error: %v", body.Login, err)
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (controller *UserController) GetMe(c echo.Context) error {
	userId := c.Get("UserID").(int64)
	user, err := controller.svc.FindUser(c.Request().Context(), userId)
	if err != nil {
		return svcError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
