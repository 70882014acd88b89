package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/stockbook-api/internal/domain/stock"
	"github.com/sangkips/stockbook-api/pkg/apperror"
)

// SetupValidator registers json field names and the domain tags on gin's
// validator: "packsize" accepts any pack size the allocation engine can
// parse, "sku" rejects blank or padded codes.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	if err := v.RegisterValidation("packsize", validatePackSize); err != nil {
		return err
	}
	return v.RegisterValidation("sku", validateSKU)
}

func validatePackSize(fl validator.FieldLevel) bool {
	_, err := stock.ParsePackSize(fl.Field().String())
	return err == nil
}

func validateSKU(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && s == strings.TrimSpace(s) && len(s) <= 100
}

// FieldErrors converts a binding failure into field errors. ok is false when
// err is not a validation failure, e.g. malformed JSON.
func FieldErrors(err error) (fields []apperror.FieldError, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	for _, e := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return fields, true
}

// fieldPath drops the struct name: "CreateSaleRequest.items[0].sku" becomes
// "items[0].sku".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "dive":
		return "Invalid list item"
	case "packsize":
		return "Pack size must not contain a zero factor"
	case "sku":
		return "SKU must be non-empty without surrounding spaces"
	default:
		return "Invalid value"
	}
}
