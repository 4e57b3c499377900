package server

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/storefront-dashboard/admin"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// fieldMessages are the user facing messages per JSON field, regardless of which rule failed.
var fieldMessages = map[string]string{
	"email":    "Invalid email address",
	"password": "Password is required",
	"shop":     "Missing or invalid shop parameter",
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("shopdomain", func(fl validator.FieldLevel) bool {
		return admin.ValidShopDomain(fl.Field().String())
	})

	return validate
}

// firstValidationMessage returns the message for the first failing field.
func firstValidationMessage(err error) string {
	var errs validator.ValidationErrors
	if stderrors.As(err, &errs) && len(errs) > 0 {
		if msg, ok := fieldMessages[errs[0].Field()]; ok {
			return msg
		}
		return errs[0].Field() + " is invalid"
	}
	return "Invalid request"
}

// validShop checks a shop query parameter with the shopdomain rule.
func (s *Server) validShop(shop string) bool {
	return s.validate.Var(shop, "required,shopdomain") == nil
}
