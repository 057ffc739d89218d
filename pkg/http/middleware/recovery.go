package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/tracker"

	"github.com/labstack/echo/v4"
)

// Recover turns handler panics into 500 responses and reports them.
func Recover(l *applogger.Logger, t tracker.Tracker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				l.Error("panic in http handler",
					applogger.Error(perr),
					applogger.String("route", c.Path()),
					applogger.String("stack", string(debug.Stack())),
				)
				t.CaptureError(c.Request().Context(), perr, map[string]string{
					"route":  c.Path(),
					"method": c.Request().Method,
				})
				err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"status":  http.StatusInternalServerError,
					"message": http.StatusText(http.StatusInternalServerError),
				})
			}()
			return next(c)
		}
	}
}
