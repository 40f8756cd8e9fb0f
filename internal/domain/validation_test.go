package domain

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidateCreate(t *testing.T) {
	v := NewValidator(validator.New())

	tests := []struct {
		name   string
		fields MovieFields
		valid  bool
	}{
		{name: "title only", fields: MovieFields{Title: Some("Inception")}, valid: true},
		{name: "all fields", fields: MovieFields{Title: Some("Inception"), Year: Some(2010), Director: Some("Nolan"), Rating: Some(8.8)}, valid: true},
		{name: "negative rating is permitted", fields: MovieFields{Title: Some("Bad"), Rating: Some(-3.0), Year: Some(-50)}, valid: true},
		{name: "missing title", fields: MovieFields{Year: Some(2010)}},
		{name: "empty title", fields: MovieFields{Title: Some("")}},
		{name: "null title", fields: MovieFields{Title: Null[string]()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateCreate(tt.fields)
			if res.Valid() != tt.valid {
				t.Fatalf("Valid()=%v, want %v (errors=%+v)", res.Valid(), tt.valid, res.Errors)
			}
			if !tt.valid {
				if res.Errors[0].Field != "title" || res.Errors[0].Rule != "required" {
					t.Fatalf("errors=%+v, want title/required", res.Errors)
				}
				if res.Error() != "title is required" {
					t.Fatalf("Error()=%q", res.Error())
				}
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewValidator(validator.New())

	tests := []struct {
		name   string
		fields MovieFields
		valid  bool
	}{
		{name: "empty patch", fields: MovieFields{}, valid: true},
		{name: "rating only", fields: MovieFields{Rating: Some(8.8)}, valid: true},
		{name: "clear director", fields: MovieFields{Director: Null[string]()}, valid: true},
		{name: "new title", fields: MovieFields{Title: Some("Tenet")}, valid: true},
		{name: "empty title", fields: MovieFields{Title: Some("")}},
		{name: "null title", fields: MovieFields{Title: Null[string]()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateUpdate(tt.fields)
			if res.Valid() != tt.valid {
				t.Fatalf("Valid()=%v, want %v (errors=%+v)", res.Valid(), tt.valid, res.Errors)
			}
			if !tt.valid && res.Error() != "title must not be empty" {
				t.Fatalf("Error()=%q", res.Error())
			}
		})
	}
}
