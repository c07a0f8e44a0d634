package util

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ApiError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func tagMessage(fe validator.FieldError, field string) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%v is required", field)
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("%v must have at least %v entries or characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%v must be at most %v characters", field, fe.Param())
	case "cmax":
		return fmt.Sprintf("%v must be at most %v non-whitespace characters", field, fe.Param())
	case "strNotEmpty":
		return fmt.Sprintf("%v must not be empty or only whitespace", field)
	case "fieldType":
		return fmt.Sprintf("%v must be one of %v", field, autosign.FieldTypes())
	}

	return fe.Error()
}

// GenerateErrorMessages turns validator errors into one ApiError per field.
// Optional params: a map[string]string renaming fields, or a string naming
// the field for errors that are not validation errors.
func GenerateErrorMessages(err error, optionalParams ...interface{}) []ApiError {
	var rename map[string]string
	fieldName := "Unknown"

	for _, param := range optionalParams {
		switch v := param.(type) {
		case map[string]string:
			rename = v
		case string:
			fieldName = v
		}
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]ApiError, len(ve))
		for i, fe := range ve {
			field := fe.Field()
			if renamed, ok := rename[field]; ok {
				field = renamed
			}
			out[i] = ApiError{Field: field, Message: tagMessage(fe, field)}
		}
		return out
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []ApiError{{Field: fieldName, Message: "Record not found"}}
	}

	return []ApiError{{Field: fieldName, Message: err.Error()}}
}

// Usage: `binding:"strNotEmpty"`
func StrNotEmpty(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	return strings.TrimSpace(field.String()) != ""
}

// CustomMax counts characters after trimming spaces.
// Usage: `binding:"cmax=200"`
func CustomMax(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	maxLength, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(strings.TrimSpace(field.String())) <= maxLength
}

// Usage: `binding:"fieldType"`
func ValidFieldType(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	return autosign.FieldType(field.String()).Valid()
}

func RegisterCustomValidations(v *validator.Validate) error {
	validations := []struct {
		tag string
		fn  validator.Func
	}{
		{"strNotEmpty", StrNotEmpty},
		{"cmax", CustomMax},
		{"fieldType", ValidFieldType},
	}

	for _, validation := range validations {
		if err := v.RegisterValidation(validation.tag, validation.fn); err != nil {
			return fmt.Errorf("failed to register %s validation: %w", validation.tag, err)
		}
	}

	return nil
}
