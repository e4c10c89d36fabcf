package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ToHTTPError converts err into an echo error carrying the mapped status.
// Internal causes are not exposed in the message.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if As(err, &appErr) {
		return echo.NewHTTPError(ToHTTPStatus(appErr.Code()), appErr.Message()).SetInternal(err)
	}
	var he *echo.HTTPError
	if As(err, &he) {
		return he
	}
	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
}

// NewHTTPErrorHandler renders every handler error as
// {"error": message, "code": CODE} and logs 5xx responses.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := ToHTTPError(err)
		code := CodeOf(err)
		if code == ErrInternal && he.Code != http.StatusInternalServerError {
			code = CodeFromHTTPStatus(he.Code)
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}

		if he.Code >= http.StatusInternalServerError {
			LogError(logger, err, "HTTP error",
				zap.Int("status", he.Code),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(he.Code)
		} else {
			writeErr = c.JSON(he.Code, echo.Map{"error": msg, "code": code})
		}
		if writeErr != nil {
			logger.Error("Failed to send error response", zap.Error(writeErr))
		}
	}
}
