// Package validation decodes JSON request bodies and checks them against
// struct tag rules before they reach a handler's business logic.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/clinic-admin-platform/internal/http/respond"
)

// FailedMessage is the top-level message on every 400 produced here.
const FailedMessage = "Validation failed"

var hhmmPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Normalizer is implemented by request types that trim or default fields before validation.
type Normalizer interface {
	Normalize()
}

// Messager is implemented by request types that override the default message for a
// field/tag pair. Keys are "<jsonField>.<tag>".
type Messager interface {
	ValidationMessages() map[string]string
}

// FieldErrors maps JSON field names to a single human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Validator wraps go-playground/validator with JSON field naming and the "hhmm" rule.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register hhmm: %v", err))
	}
	return &Validator{validate: v}
}

// Struct validates s and returns nil or FieldErrors.
func (v *Validator) Struct(s any) error {
	if n, ok := s.(Normalizer); ok {
		n.Normalize()
	}
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"general": err.Error()}
	}
	var overrides map[string]string
	if m, ok := s.(Messager); ok {
		overrides = m.ValidationMessages()
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := overrides[field+"."+fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		out[field] = defaultMessage(fe)
	}
	return out
}

func defaultMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must contain at least %s character(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return field + " must be a positive number"
	case "oneof":
		return "Invalid enum value. Expected " + strings.Join(strings.Fields(fe.Param()), " | ")
	case "hhmm":
		return field + " must be in HH:MM format"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Decode reads r's JSON body into dst and validates it. On failure it writes the
// 400 response and returns false.
func (v *Validator) Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeFailure(w, FieldErrors{"general": msg})
		return false
	}
	if err := v.Struct(dst); err != nil {
		var fields FieldErrors
		if !errors.As(err, &fields) {
			fields = FieldErrors{"general": err.Error()}
		}
		writeFailure(w, fields)
		return false
	}
	return true
}

// Body decodes and validates a T, writing the 400 response on failure.
func Body[T any](v *Validator, w http.ResponseWriter, r *http.Request) (*T, bool) {
	dst := new(T)
	if !v.Decode(w, r, dst) {
		return nil, false
	}
	return dst, true
}

func writeFailure(w http.ResponseWriter, fields FieldErrors) {
	respond.JSON(w, http.StatusBadRequest, map[string]any{
		"message": FailedMessage,
		"errors":  fields,
	})
}
