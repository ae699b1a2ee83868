// Package response writes the API's raw JSON bodies. Successful calls return
// the resource itself; most failures return a bare status with no body.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
)

// OK returns a 200 response with data as the body
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Created returns a 201 Created response with data as the body
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContent returns a 204 No Content response
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// ValidationFailed returns a 400 response with field messages as the body
func ValidationFailed(c echo.Context, fields map[string]string) error {
	return c.JSON(http.StatusBadRequest, fields)
}

// Empty returns status with no body
func Empty(c echo.Context, status int) error {
	return c.NoContent(status)
}

// BadRequest returns a 400 response with no body
func BadRequest(c echo.Context) error {
	return c.NoContent(http.StatusBadRequest)
}

// NotFound returns a 404 response with no body
func NotFound(c echo.Context) error {
	return c.NoContent(http.StatusNotFound)
}

// Error returns an empty body with the status mapped from err
func Error(c echo.Context, err error) error {
	return c.NoContent(apperrors.HTTPStatus(err))
}
