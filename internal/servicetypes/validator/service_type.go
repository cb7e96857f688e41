package validator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"fixwell/pkg/logger"
	"fixwell/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ServiceTypeValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewServiceTypeValidator(log *logger.Logger) *ServiceTypeValidator {
	return &ServiceTypeValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ServiceTypeValidator) Validate(st *model.ServiceType) error {
	if err := v.validate.Struct(st); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// Exclusivity only makes sense on days the service can be booked.
	for _, day := range st.ExclusiveDays {
		if !slices.Contains(st.AllowedDays, day) {
			return ValidationErrors{{
				Field:   "exclusive_days",
				Message: fmt.Sprintf("day %d is exclusive but not in allowed_days", day),
			}}
		}
	}

	if st.IsExclusive && len(st.ExclusiveDays) == 0 {
		return ValidationErrors{{
			Field:   "exclusive_days",
			Message: "exclusive service types must name at least one exclusive day",
		}}
	}

	return nil
}

func (v *ServiceTypeValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
