package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the data array of a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var tagMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"e164":     "Invalid phone number format",
	"uuid4":    "Value must be a valid UUID",
}

// FormatValidationErrors turns a gin binding error into per-field messages.
// model is the bound request, used to report JSON names instead of Go
// field names; it may be nil. Errors that are not about fields yield nil.
func FormatValidationErrors(err error, model any) []FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Expected %s, got %s", typeErr.Type, typeErr.Value),
		}}
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return nil
	}

	out := make([]FieldError, 0, len(invalid))
	for _, fe := range invalid {
		out = append(out, FieldError{
			Field:   jsonPath(model, fe),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "min":
		return "Must be at least " + param + sizeUnit(fe)
	case "max":
		return "Must not exceed " + param + sizeUnit(fe)
	}
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}

func sizeUnit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}

// jsonPath renames the top-level field to its JSON tag and keeps any
// element index, so Statuses[1] becomes statuses[1].
func jsonPath(model any, fe validator.FieldError) string {
	name := fe.Field()
	if model == nil {
		return name
	}

	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return name
	}

	base, index, _ := strings.Cut(name, "[")
	field, ok := t.FieldByName(base)
	if !ok {
		return name
	}
	tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return name
	}
	if index != "" {
		return tag + "[" + index
	}
	return tag
}
