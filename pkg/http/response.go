package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	HeaderCache      = "X-Cache"
	CacheControlNone = "no-store"
)

// DataResponse writes API response with status and data.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// ListResponse writes a list with its total.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

// SuccessResponse writes success response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// CachedResponse writes a success response with shared-cache headers.
// status is reported in X-Cache (HIT, MISS or STALE).
func CachedResponse(c echo.Context, data interface{}, maxAge, staleFor time.Duration, status string) error {
	h := c.Response().Header()
	h.Set(echo.HeaderCacheControl, CacheControl(maxAge, staleFor))
	if status != "" {
		h.Set(HeaderCache, status)
	}
	return SuccessResponse(c, data)
}

// CacheControl builds a public s-maxage directive.
func CacheControl(maxAge, staleFor time.Duration) string {
	if maxAge <= 0 {
		return CacheControlNone
	}
	v := fmt.Sprintf("public, s-maxage=%d", int(maxAge.Seconds()))
	if staleFor > 0 {
		v += fmt.Sprintf(", stale-while-revalidate=%d", int(staleFor.Seconds()))
	}
	return v
}

// BadRequestResponse writes bad request error.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

// NotFoundResponse writes not found error.
func NotFoundResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusNotFound, data)
}

// InternalServerErrorResponse writes internal server error.
func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes application error response.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
