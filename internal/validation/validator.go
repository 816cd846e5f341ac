// Package validation wires go-playground/validator into echo.
package validation

import (
	"reflect"
	"strings"

	"storeops/internal/common"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New builds a validator that reports json field names and knows the custom tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names for field names in errors
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

	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return common.ValidCPF(fl.Field().String())
	})
	_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return common.ValidCNPJ(fl.Field().String())
	})
	_ = v.RegisterValidation("document", func(fl validator.FieldLevel) bool {
		return common.ValidDocument(fl.Field().String())
	})
	// decimals are validated as their float64 value
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
		f, ok := asFloat(fl.Field())
		return ok && f > 0
	})
	_ = v.RegisterValidation("dgte0", func(fl validator.FieldLevel) bool {
		f, ok := asFloat(fl.Field())
		return ok && f >= 0
	})

	return &Validator{v: v}
}

// Validate satisfies echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

func asFloat(field reflect.Value) (float64, bool) {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return field.Float(), true
	case reflect.Int, reflect.Int32, reflect.Int64:
		return float64(field.Int()), true
	}
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64(), true
	}
	return 0, false
}

// FieldPath returns the error's path without the root struct name, e.g. items[0].quantity.
func FieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
