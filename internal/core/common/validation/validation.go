package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "github.com/frahmantamala/saas-admin/internal"
)

var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates `validate` struct tags and reports failures keyed by json field name.
func Struct(s interface{}) *apperrors.AppError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: tagMessage(fe),
			Code:    string(tagCode(fe.Tag())),
		})
	}
	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: out})
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid identifier", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func tagCode(tag string) apperrors.ErrorCode {
	switch tag {
	case "url", "http_url":
		return apperrors.ErrCodeInvalidURL
	case "oneof":
		return apperrors.ErrCodeInvalidEnum
	case "uuid":
		return apperrors.ErrCodeInvalidID
	default:
		return apperrors.ErrCodeValidationFailed
	}
}

type ValidatorFunc func(interface{}) *apperrors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code apperrors.ErrorCode) *apperrors.AppError {
	return apperrors.NewValidationFieldError(fv.FieldName, message, code)
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		missing := false
		switch v := value.(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		case time.Time:
			missing = v.IsZero()
		case *time.Time:
			missing = v == nil || v.IsZero()
		case nil:
			missing = true
		}
		if missing {
			return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), apperrors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinInt(min int64, code apperrors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		var n int64
		switch v := value.(type) {
		case int:
			n = int64(v)
		case int64:
			n = v
		default:
			return nil
		}
		if n < min {
			return fv.fail(fmt.Sprintf("%s must be at least %d", fv.FieldName, min), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), apperrors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// OneOf accepts string-kinded values (including named string types).
func (fv *FieldValidator) OneOf(allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.String {
			return nil
		}
		if !slices.Contains(allowed, rv.String()) {
			message := fmt.Sprintf("%s must be one of [%s]", fv.FieldName, strings.Join(allowed, " "))
			return fv.fail(message, apperrors.ErrCodeInvalidEnum)
		}
		return nil
	})
	return fv
}

// PositiveAmount requires a decimal > 0 with at most two fractional digits.
func (fv *FieldValidator) PositiveAmount() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		d, ok := value.(decimal.Decimal)
		if !ok {
			return nil
		}
		if !d.IsPositive() {
			return fv.fail(fmt.Sprintf("%s must be greater than 0", fv.FieldName), apperrors.ErrCodeInvalidAmount)
		}
		if !d.Equal(d.Round(2)) {
			return fv.fail(fmt.Sprintf("%s must have at most 2 decimal places", fv.FieldName), apperrors.ErrCodeInvalidAmount)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NonNegative() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		d, ok := value.(decimal.Decimal)
		if ok && d.IsNegative() {
			return fv.fail(fmt.Sprintf("%s must not be negative", fv.FieldName), apperrors.ErrCodeInvalidAmount)
		}
		return nil
	})
	return fv
}

// URL validates an optional URL; nil and empty pass.
func (fv *FieldValidator) URL() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v != nil {
				s = *v
			}
		}
		if s == "" {
			return nil
		}
		if err := validate.Var(s, "http_url"); err != nil {
			return fv.fail(fmt.Sprintf("%s must be a valid URL", fv.FieldName), apperrors.ErrCodeInvalidURL)
		}
		return nil
	})
	return fv
}

// Email checks the address shape; pair with Required when the field is mandatory.
func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil
		}
		if err := validate.Var(s, "email"); err != nil {
			return fv.fail(fmt.Sprintf("%s must be a valid email address", fv.FieldName), apperrors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *apperrors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *apperrors.AppError {
	var validationErrors []apperrors.ValidationError

	for _, field := range v.fields {
		for _, check := range field.Validators {
			appErr := check(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(apperrors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, apperrors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			// first failing rule per field
			break
		}
	}

	if len(validationErrors) > 0 {
		return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
			WithDetails(apperrors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// Merge combines validation failures from several sources into one error.
func Merge(errs ...*apperrors.AppError) *apperrors.AppError {
	var all []apperrors.ValidationError
	for _, e := range errs {
		if e == nil {
			continue
		}
		if details, ok := e.Details.(apperrors.ValidationErrors); ok {
			all = append(all, details.Errors...)
			continue
		}
		all = append(all, apperrors.ValidationError{Message: e.Message, Code: string(e.Code)})
	}
	if len(all) == 0 {
		return nil
	}
	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: all})
}
