package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rule a payload broke.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a create or update payload.
type ValidationResult struct {
	Errors []FieldError `json:"errors,omitempty"`
}

func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Error joins the field messages, e.g. "title is required".
func (r ValidationResult) Error() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validator checks movie payloads before anything reaches the store.
// Optional fields are deliberately unconstrained: year, director and rating
// accept any value of the right type.
type Validator struct {
	validate *validator.Validate
}

// NewValidator wraps v and makes it report JSON field names.
func NewValidator(v *validator.Validate) *Validator {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

type createView struct {
	Title    string   `json:"title" validate:"required"`
	Year     *int     `json:"year"`
	Director *string  `json:"director"`
	Rating   *float64 `json:"rating"`
}

type updateView struct {
	Title    *string  `json:"title" validate:"omitnil,min=1"`
	Year     *int     `json:"year"`
	Director *string  `json:"director"`
	Rating   *float64 `json:"rating"`
}

// ValidateCreate checks a payload for a new record: title must be present and non-empty.
func (v *Validator) ValidateCreate(f MovieFields) ValidationResult {
	view := createView{
		Title:    f.Title.Or(""),
		Year:     f.Year.Value,
		Director: f.Director.Value,
		Rating:   f.Rating.Value,
	}
	return v.run(view)
}

// ValidateUpdate checks a partial payload. Only supplied fields are checked;
// a supplied title (including null) must be non-empty.
func (v *Validator) ValidateUpdate(f MovieFields) ValidationResult {
	view := updateView{
		Year:     f.Year.Value,
		Director: f.Director.Value,
		Rating:   f.Rating.Value,
	}
	if f.Title.Set {
		title := f.Title.Or("")
		view.Title = &title
	}
	return v.run(view)
}

func (v *Validator) run(view any) ValidationResult {
	err := v.validate.Struct(view)
	if err == nil {
		return ValidationResult{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationResult{Errors: []FieldError{{Rule: "invalid", Message: err.Error()}}}
	}
	res := ValidationResult{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return res
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		if fe.Param() == "1" {
			return fe.Field() + " must not be empty"
		}
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
