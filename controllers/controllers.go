package controllers

import (
	"errors"
	"io"
	"strconv"

	"github.com/classfund/classfund.go/lib/responses"
	"github.com/classfund/classfund.go/lib/service"
	"github.com/labstack/echo/v4"
)

// svcErrorResponse maps the service layer's sentinel errors onto the
// wire error bodies. Unknown errors become the generic 500.
func svcErrorResponse(err error) responses.ErrorResponse {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return responses.NotFoundError
	case errors.Is(err, service.ErrNotMember):
		return responses.NotClassMemberError
	case errors.Is(err, service.ErrTreasurerRequired):
		return responses.TreasurerRequiredError
	case errors.Is(err, service.ErrOwnerRequired):
		return responses.OwnerRequiredError
	case errors.Is(err, service.ErrNotInvoiceOwner):
		return responses.NotInvoiceOwnerError
	case errors.Is(err, service.ErrNotSubmittable):
		return responses.InvoiceNotSubmittableError
	case errors.Is(err, service.ErrPastDue):
		return responses.PastDueError
	case errors.Is(err, service.ErrConflict):
		return responses.PaymentConflictError
	}
	return responses.GeneralServerError
}

func svcError(c echo.Context, err error) error {
	body := svcErrorResponse(err)
	return c.JSON(body.HttpStatusCode, body)
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formFile reads an optional uploaded file from a multipart form,
// returning nil bytes when the field is absent.
func formFile(c echo.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, fileHeader.Filename, nil
}
