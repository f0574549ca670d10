package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// fieldMessages maps "field.tag" to the message shown next to the form field.
var fieldMessages = map[string]string{
	"subject.notblank":         "Subject is required",
	"subject.min":              "Subject must be at least 5 characters",
	"description.notblank":     "Description is required",
	"description.min":          "Please provide more details (at least 20 characters)",
	"category.required":        "Please select a category",
	"category.ticket_category": "Please select a category",
	"priority.ticket_priority": "Please select a valid priority",
	"requestType.request_type": "Please select a valid request type",
	"content.notblank":         "Comment cannot be empty",
	"type.activity_type":       "Unknown activity type",
	"type.required":            "Activity type is required",
	"subjectId.required":       "Subject id is required",
	"subjectType.subject_type": "Subject type must be USER or AGENT",
	"theme.theme":              "Theme must be light, dark or system",
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so messages line up with request fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"ticket_category": func(fl validator.FieldLevel) bool {
			return domain.TicketCategory(fl.Field().String()).Valid()
		},
		"ticket_priority": func(fl validator.FieldLevel) bool {
			return domain.TicketPriority(fl.Field().String()).Valid()
		},
		"request_type": func(fl validator.FieldLevel) bool {
			return domain.RequestType(fl.Field().String()).Valid()
		},
		"activity_type": func(fl validator.FieldLevel) bool {
			return domain.ActivityType(fl.Field().String()).Valid()
		},
		"subject_type": func(fl validator.FieldLevel) bool {
			s := domain.SubjectType(fl.Field().String())
			return s == domain.SubjectTypeUser || s == domain.SubjectTypeAgent
		},
		"theme": func(fl validator.FieldLevel) bool {
			return domain.Theme(fl.Field().String()).Valid()
		},
	} {
		mustRegister(v, tag, fn)
	}
	return v
}

// mustRegister panics when tag cannot be registered, so a broken tag fails
// at construction instead of passing every value.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validateStruct runs v over input and folds field errors into a
// VALIDATION_FAILED error keyed by json field name.
func validateStruct(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid input", nil).Wrap(err)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := details[field]; seen {
			continue
		}
		details[field] = validationMessage(fe)
	}
	return apperrors.NewValidationError("validation failed", details)
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	}
	return fe.Field() + " is invalid"
}
