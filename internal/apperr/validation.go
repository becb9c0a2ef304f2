package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/tenx-cards/internal/problem"
)

// FieldErrors is the flattened validation breakdown sent in problem meta:
// {"fieldErrors": {"email": ["must be a valid email"]}, "formErrors": [...]}.
type FieldErrors struct {
	Fields map[string][]string
	Form   []string
}

// Add records msg for field; an empty field records a form-level error.
func (f *FieldErrors) Add(field, msg string) {
	if field == "" {
		f.Form = append(f.Form, msg)
		return
	}
	if f.Fields == nil {
		f.Fields = make(map[string][]string)
	}
	f.Fields[field] = append(f.Fields[field], msg)
}

// Empty reports whether nothing was recorded.
func (f FieldErrors) Empty() bool { return len(f.Fields) == 0 && len(f.Form) == 0 }

// Meta converts the breakdown into the problem meta payload.
func (f FieldErrors) Meta() map[string]any {
	fields := f.Fields
	if fields == nil {
		fields = map[string][]string{}
	}
	form := f.Form
	if form == nil {
		form = []string{}
	}
	return map[string]any{"fieldErrors": fields, "formErrors": form}
}

// Invalid builds a validation error of kind k from an explicit breakdown.
func Invalid(k *problem.Kind, fe FieldErrors) *problem.Error {
	if fe.Empty() {
		fe.Add("", "invalid request")
	}
	return k.New(validationDetail(fe), problem.WithMeta(fe.Meta()))
}

// FieldError is shorthand for a single invalid field.
func FieldError(k *problem.Kind, field, msg string) *problem.Error {
	var fe FieldErrors
	fe.Add(field, msg)
	return Invalid(k, fe)
}

// FromValidation maps a binding/validation failure to
// system/validation-failed. See ValidationMapper.
func FromValidation(err error) *problem.Error {
	return ValidationMapper(SystemValidationFailed)(err)
}

// ValidationMapper returns a mapper that turns any binding or validation
// error into a 400 error of kind k. The meta always carries at least one
// field or form error.
func ValidationMapper(k *problem.Kind) func(error) *problem.Error {
	return func(err error) *problem.Error {
		fe := Flatten(err)
		if fe.Empty() {
			fe.Add("", "invalid request")
		}
		return k.New(validationDetail(fe), problem.WithMeta(fe.Meta()), problem.WithCause(err))
	}
}

// Flatten converts validator, JSON decoding and generic errors into a
// FieldErrors breakdown. Messages of unrecognized errors are not copied.
func Flatten(err error) FieldErrors {
	var fe FieldErrors
	if err == nil {
		return fe
	}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &verrs):
		for _, v := range verrs {
			fe.Add(fieldPath(v), describe(v))
		}
	case errors.As(err, &typeErr):
		fe.Add(typeErr.Field, "must be a "+jsonKind(typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		fe.Add("", "malformed JSON body")
	case errors.Is(err, io.EOF):
		fe.Add("", "request body is empty")
	default:
		fe.Add("", "invalid request")
	}
	return fe
}

// fieldPath strips the top-level struct name from the validator namespace:
// "createReq.flashcards[0].front" becomes "flashcards[0].front".
func fieldPath(v validator.FieldError) string {
	ns := v.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return v.Field()
}

func describe(v validator.FieldError) string {
	switch v.Tag() {
	case "required", "required_if", "required_with":
		return "is required"
	case "excluded_if", "excluded_unless", "isdefault":
		return "must not be set"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		if isCounted(v.Kind()) {
			return fmt.Sprintf("must contain at least %s items", v.Param())
		}
		return fmt.Sprintf("must be at least %s characters", v.Param())
	case "max":
		if isCounted(v.Kind()) {
			return fmt.Sprintf("must contain at most %s items", v.Param())
		}
		return fmt.Sprintf("must be at most %s characters", v.Param())
	case "gte":
		return "must be greater than or equal to " + v.Param()
	case "lte":
		return "must be less than or equal to " + v.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(v.Param()), ", ")
	case "eqfield":
		return "must match " + lowerFirst(v.Param())
	default:
		return "failed the " + v.Tag() + " check"
	}
}

func isCounted(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Map || k == reflect.Array
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}

func validationDetail(fe FieldErrors) string {
	if len(fe.Fields) == 0 {
		return "The submitted data is invalid."
	}
	names := make([]string, 0, len(fe.Fields))
	for k := range fe.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "The submitted data is invalid: " + strings.Join(names, ", ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// RegisterJSONFieldNames makes v report fields by their json tag so that
// meta keys match the request payload.
func RegisterJSONFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
}
