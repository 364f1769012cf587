package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var NotClassMemberError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "not a member of this class",
	HttpStatusCode: 403,
}

var TreasurerRequiredError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "owner or treasurer role required",
	HttpStatusCode: 403,
}

var OwnerRequiredError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "owner role required",
	HttpStatusCode: 403,
}

var NotFoundError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "resource not found",
	HttpStatusCode: 404,
}

var NotInvoiceOwnerError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "not your invoice",
	HttpStatusCode: 403,
}

var InvoiceNotSubmittableError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "invoice is not open for submission",
	HttpStatusCode: 422,
}

var PastDueError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "past due date and late submissions are not allowed",
	HttpStatusCode: 422,
}

var PaymentConflictError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "payment is not in a state that allows this action",
	HttpStatusCode: 409,
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("UserID", c.Get("UserID"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
		return
	}
	c.JSON(http.StatusInternalServerError, GeneralServerError)
}
