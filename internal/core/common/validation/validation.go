package validation

import (
	"fmt"
	"math"
	"strings"

	errors "github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/week"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

// Required rejects empty and whitespace-only strings.
func (fv *FieldValidator) Required(message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, message, code)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, message, code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Positive(message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(float64); ok && (!(v > 0) || math.IsInf(v, 1)) {
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
			return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// Week accepts only "YYYY-Www" identifiers. Empty values pass unless Required is also set.
func (fv *FieldValidator) Week(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" && !week.Valid(v) {
			message := fmt.Sprintf("%s debe tener el formato AAAA-Wnn", fv.FieldName)
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed []string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		message := fmt.Sprintf("%s must be one of %s", fv.FieldName, strings.Join(allowed, ", "))
		return errors.NewValidationFieldError(fv.FieldName, message, code)
	})
	return fv
}

// Validate collects every failure. The first one in declaration order becomes the error message.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError
	var first *errors.AppError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if first == nil {
				first = appErr
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
		}
	}

	if len(validationErrors) == 0 {
		return nil
	}

	code := errors.ErrCodeValidationFailed
	if len(validationErrors) == 1 {
		code = errors.ErrorCode(validationErrors[0].Code)
	}
	return errors.NewValidationError(validationErrors[0].Message, code).
		WithDetails(errors.ValidationErrors{Errors: validationErrors})
}

func ValidateEntryInput(projectID string, hours float64, wk, description string) *errors.AppError {
	validator := NewValidator()
	validator.Field("project_id", projectID).
		Required("Selecciona un proyecto", errors.ErrCodeProjectRequired)
	validator.Field("hours", hours).
		Positive("Las horas deben ser mayores a 0", errors.ErrCodeInvalidHours)
	validator.Field("week", wk).
		Required("Ingresa la semana", errors.ErrCodeInvalidWeek).
		Week(errors.ErrCodeInvalidWeek)
	validator.Field("description", description).
		MaxLength(2000)
	return validator.Validate()
}

func ValidateProjectName(name string) *errors.AppError {
	validator := NewValidator()
	validator.Field("name", name).
		Required("Ingresa el nombre del proyecto", errors.ErrCodeProjectNameRequired).
		MaxLength(200)
	return validator.Validate()
}

func ValidateWeekRange(start, end string) *errors.AppError {
	validator := NewValidator()
	validator.Field("start_week", start).Week(errors.ErrCodeInvalidWeek)
	validator.Field("end_week", end).Week(errors.ErrCodeInvalidWeek)
	return validator.Validate()
}

func ValidateStatusFilter(status string) *errors.AppError {
	if status == "" {
		return nil
	}
	validator := NewValidator()
	validator.Field("status", status).
		OneOf([]string{"all", "pending", "approved", "rejected"}, errors.ErrCodeInvalidStatus)
	return validator.Validate()
}
