// Package validator provides request validation using go-playground/validator.
package validator

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"content-discovery-service/internal/domain"
)

// Validator wraps the go-playground validator with custom configuration.
type Validator struct {
	v *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// vocabulary maps each custom tag to the values it accepts.
var vocabulary = map[string][]string{
	"loader":       toStrings(domain.Loaders()),
	"content_type": toStrings(domain.ContentTypes()),
	"sort_key":     toStrings(domain.SortKeys()),
	"source_scope": {string(domain.ScopeAll), string(domain.ScopeCurseForge), string(domain.ScopeModrinth)},
}

// New creates a new Validator instance with custom tag name and validations.
// Loader names are matched case-insensitively, the other vocabularies exactly.
func New() *Validator {
	v := validator.New()

	// Report fields by the name the client sent: query, then json, then Go name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json", "params"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	for tag, allowed := range vocabulary {
		fold := tag == "loader"
		if err := v.RegisterValidation(tag, oneOfVocabulary(allowed, fold)); err != nil {
			panic(fmt.Sprintf("registering %s validation: %v", tag, err))
		}
	}

	return &Validator{v: v}
}

func oneOfVocabulary(allowed []string, fold bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if fold {
			s = strings.ToLower(strings.TrimSpace(s))
		}
		return slices.Contains(allowed, s)
	}
}

// Validate validates the given struct and returns ValidationErrors if invalid.
func (v *Validator) Validate(i interface{}) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errs ValidationErrors
	for _, e := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Value:   fmt.Sprintf("%v", e.Value()),
			Message: formatErrorMessage(e),
		})
	}

	return errs
}

// formatErrorMessage generates a human-readable error message.
func formatErrorMessage(e validator.FieldError) string {
	field := e.Field()

	if allowed, ok := vocabulary[e.Tag()]; ok {
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, " "))
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
