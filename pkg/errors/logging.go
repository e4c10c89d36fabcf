package errors

import "go.uber.org/zap"

// LogError logs err at error level, adding error_code for an AppError.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}
	all := append([]zap.Field{zap.Error(err)}, fields...)
	var appErr *AppError
	if As(err, &appErr) {
		all = append(all, zap.String("error_code", appErr.Code()))
	}
	logger.Error(msg, all...)
}
