package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetingops/taskbridge/errors"
)

// HandleError maps an error to the JSON error envelope. AppErrors carry
// their own status code; anything else is a 500.
func HandleError(c echo.Context, logger *zap.Logger, err error) error {
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		appErr = errors.ErrInternal(err)
	}

	if logger != nil {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("❌ Request failed",
				zap.String("path", c.Request().URL.Path),
				zap.String("code", appErr.Code.String()),
				zap.Error(err))
		} else {
			logger.Warn("⚠️ Request rejected",
				zap.String("path", c.Request().URL.Path),
				zap.String("code", appErr.Code.String()))
		}
	}

	body := map[string]any{
		"error": map[string]any{
			"code":    appErr.Code.String(),
			"message": appErr.Message,
		},
	}
	if len(appErr.Details) > 0 {
		body["error"].(map[string]any)["details"] = appErr.Details
	}
	return c.JSON(appErr.HTTPCode, body)
}

// BindAndValidate binds the request body into req and runs validation
func BindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload()
	}
	if err := c.Validate(req); err != nil {
		return errors.ErrInvalidArgument(err.Error())
	}
	return nil
}
