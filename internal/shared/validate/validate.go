// Package validate valida os DTOs de entrada antes de qualquer chamada de rede.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	pinRe       = regexp.MustCompile(`^[0-9]{4}$|^[0-9]{6}$`)
	referenceRe = regexp.MustCompile(`^[A-Za-z0-9_\-]{4,64}$`)
	nubanRe     = regexp.MustCompile(`^[0-9]{10}$`)
	phoneRe     = regexp.MustCompile(`^(\+?234|0)[789][01][0-9]{8}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// usa o nome do campo JSON nas mensagens
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return pinRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("reference", func(fl validator.FieldLevel) bool {
		return referenceRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("nuban", func(fl validator.FieldLevel) bool {
		return nubanRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("ngphone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	// decimal.Decimal é validado pela sua representação textual
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("naira", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive() && d.Equal(d.Round(2))
	})
	return v
}

// FieldError descreve uma regra violada num campo do payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors agrega as violações encontradas
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Struct valida o payload e devolve Errors quando há violações
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "pin":
		return "must be a 4 or 6 digit PIN"
	case "reference":
		return "must be 4-64 letters, digits, '-' or '_'"
	case "nuban":
		return "must be a 10 digit account number"
	case "ngphone":
		return "must be a valid Nigerian phone number"
	case "naira":
		return "must be a positive amount with at most 2 decimal places"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
