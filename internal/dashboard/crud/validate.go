package crud

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/go-playground/validator/v10"
)

// Validator checks create payloads against the struct tags of T and update
// patches against the same tags, field by field.
type Validator[T any] struct {
	validate *validator.Validate
	fields   map[string]patchField
}

type patchField struct {
	typ reflect.Type
	tag string
}

var timeType = reflect.TypeOf(time.Time{})

func NewValidator[T any]() *Validator[T] {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	fields := map[string]patchField{}
	var zero T
	typ := reflect.TypeOf(zero)
	if typ != nil && typ.Kind() == reflect.Struct {
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if !f.IsExported() {
				continue
			}
			name := jsonName(f)
			if name == "" {
				continue
			}
			fields[name] = patchField{typ: f.Type, tag: f.Tag.Get("validate")}
		}
	}

	return &Validator[T]{validate: v, fields: fields}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Struct validates a full payload. The first failing field is reported.
func (v *Validator[T]) Struct(data T) error {
	return v.fieldError("", v.validate.Struct(data))
}

// Patch validates a partial update. Keys must name fields of T, values must
// decode into the field type and satisfy its validate tag.
func (v *Validator[T]) Patch(patch domain.Patch) error {
	if len(patch) == 0 {
		return &domain.ValidationError{Message: "nothing to update"}
	}

	// sorted so the reported field is deterministic
	for _, key := range slices.Sorted(maps.Keys(patch)) {
		field, ok := v.fields[key]
		if !ok {
			return &domain.ValidationError{Field: key, Message: "is not a known field"}
		}
		if err := v.checkValue(key, field, patch[key]); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator[T]) checkValue(key string, field patchField, value any) error {
	required := hasRule(field.tag, "required")
	if value == nil {
		if required {
			return &domain.ValidationError{Field: key, Message: "is required"}
		}
		return nil
	}

	decoded := reflect.New(field.typ)
	raw, err := json.Marshal(value)
	if err != nil {
		return &domain.ValidationError{Field: key, Message: "has an unsupported value"}
	}
	if err := json.Unmarshal(raw, decoded.Interface()); err != nil {
		return &domain.ValidationError{Field: key, Message: "has the wrong type"}
	}

	target := decoded.Elem()
	for target.Kind() == reflect.Pointer {
		if target.IsNil() {
			if required {
				return &domain.ValidationError{Field: key, Message: "is required"}
			}
			return nil
		}
		target = target.Elem()
	}

	if target.Kind() == reflect.Struct && target.Type() != timeType {
		return v.fieldError(key, v.validate.Struct(target.Interface()))
	}
	if field.tag == "" || field.tag == "-" {
		return nil
	}
	return v.fieldError(key, v.validate.Var(target.Interface(), field.tag))
}

func (v *Validator[T]) fieldError(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ValidationError{Field: prefix, Message: err.Error()}
	}

	fe := verrs[0]
	name := fe.Field()
	if ns := fe.Namespace(); ns != "" {
		// drop the root struct name
		if _, rest, ok := strings.Cut(ns, "."); ok {
			name = rest
		}
	}
	switch {
	case prefix == "":
	case name == "":
		name = prefix
	default:
		name = prefix + "." + name
	}
	return &domain.ValidationError{Field: name, Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

func hasRule(tag, rule string) bool {
	for _, part := range strings.Split(tag, ",") {
		if part == rule {
			return true
		}
	}
	return false
}
