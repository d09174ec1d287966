package httpapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct returns the failed rule per JSON field, or nil when v is valid.
func validateStruct(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, verr := range verrs {
		if _, exists := out[verr.Field()]; exists {
			continue
		}
		out[verr.Field()] = verr.Tag()
	}
	return out
}
