// Package forms binds admin and contact form submissions to structs and checks
// their required fields.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/portfolio-backend/errs"
)

// FieldError is one failed rule on one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"-"`
}

// Result is the outcome of validating a form.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Add records a failure for field.
func (r *Result) Add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

func (r *Result) addRule(field, rule, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message, Rule: rule})
}

// Err returns the first failure as an API error, or nil when the form is valid.
func (r Result) Err() *errs.ApiErr {
	if r.Valid() {
		return nil
	}
	first := r.Errors[0]
	if first.Rule == "required" {
		return errs.NewMissingRequiredFieldError(first.Field, first.Message)
	}
	return errs.NewInvalidFieldError(first.Field, first.Message)
}

// Messages returns the error messages in field order.
func (r Result) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// Has reports whether field failed validation.
func (r Result) Has(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate runs the struct's validate tags and turns failures into a Result.
// Field names come from the form tag; labels come from the label tag.
func Validate(v any) Result {
	var result Result

	err := instance().Struct(v)
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Add("", err.Error())
		return result
	}

	t := reflect.Indirect(reflect.ValueOf(v)).Type()
	for _, fe := range verrs {
		label := fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		result.addRule(fe.Field(), fe.Tag(), message(label, fe))
	}
	return result
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "http_url":
		return fmt.Sprintf("%s must be a valid http(s) URL", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// parse reads either a multipart or urlencoded body, bounded by maxBytes.
func parse(r *http.Request, maxBytes int64) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxBytes)
	}
	return r.ParseForm()
}

func value(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

func optional(r *http.Request, key string) *string {
	v := value(r, key)
	if v == "" {
		return nil
	}
	return &v
}

func checkbox(r *http.Request, key string) bool {
	switch strings.ToLower(value(r, key)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}
