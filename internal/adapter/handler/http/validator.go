package http

import (
	"reflect"
	"strings"

	"github.com/Douglas360/auction-intel-estate-sub000/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs validator/v10 struct tags into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate reports the first failing field as an INVALID_ARGUMENT error.
func (v *RequestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fe.Field() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return errors.NewAppError(errors.ErrInvalidArgument, msg, err)
	}
	return errors.NewAppError(errors.ErrInvalidArgument, "invalid request", err)
}

// bindAndValidate decodes the JSON body into req and runs its tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.NewAppError(errors.ErrInvalidArgument, "Invalid request body", err)
	}
	return c.Validate(req)
}
