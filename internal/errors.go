package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound            ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized        ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden           ErrorType = "FORBIDDEN"
	ErrorTypeConflict            ErrorType = "CONFLICT"
	ErrorTypePromoInvalid        ErrorType = "PROMO_INVALID"
	ErrorTypeIllegalTransition   ErrorType = "ILLEGAL_TRANSITION"
	ErrorTypeConcurrencyConflict ErrorType = "CONCURRENCY_CONFLICT"
	ErrorTypeInternal            ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidURL       ErrorCode = "INVALID_URL"
	ErrCodeInvalidEnum      ErrorCode = "INVALID_ENUM"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"

	ErrCodePromoNotFound      ErrorCode = "PROMO_NOT_FOUND"
	ErrCodePromoExpired       ErrorCode = "PROMO_EXPIRED"
	ErrCodePromoLimitReached  ErrorCode = "PROMO_LIMIT_REACHED"
	ErrCodePromoNotAssigned   ErrorCode = "PROMO_NOT_ASSIGNED_TO_USER"
	ErrCodePromoCodeTaken     ErrorCode = "PROMO_CODE_TAKEN"
	ErrCodeRedemptionConflict ErrorCode = "REDEMPTION_CONFLICT"

	ErrCodeExpenseNotFound   ErrorCode = "EXPENSE_NOT_FOUND"
	ErrCodeIllegalTransition ErrorCode = "ILLEGAL_STATUS_TRANSITION"
	ErrCodeApproverRequired  ErrorCode = "APPROVER_ROLE_REQUIRED"
	ErrCodeStatusChanged     ErrorCode = "STATUS_CHANGED"

	ErrCodeSalesPersonNotFound ErrorCode = "SALES_PERSON_NOT_FOUND"
	ErrCodeSalesEmailTaken     ErrorCode = "SALES_EMAIL_TAKEN"
	ErrCodeCustomerNotFound    ErrorCode = "USER_NOT_FOUND"

	ErrCodeAdminRequired      ErrorCode = "ADMIN_REQUIRED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeAccountNotFound    ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeAccountEmailTaken  ErrorCode = "ACCOUNT_EMAIL_TAKEN"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
		messages := make([]string, len(validationErrors.Errors))
		for i, err := range validationErrors.Errors {
			messages[i] = err.Message
		}
		return strings.Join(messages, "; ")
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError of the same type and code, so
// errors.Is works against the package-level sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause; sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewPromoInvalidError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypePromoInvalid,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewIllegalTransitionError(message string, code ErrorCode, status int) *AppError {
	return &AppError{
		Type:       ErrorTypeIllegalTransition,
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

func NewConcurrencyConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConcurrencyConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrPromoNotFound      = NewNotFoundError("Promo code not found", ErrCodePromoNotFound)
	ErrPromoExpired       = NewPromoInvalidError("Promo code has expired", ErrCodePromoExpired)
	ErrPromoLimitReached  = NewPromoInvalidError("Promo code usage limit reached", ErrCodePromoLimitReached)
	ErrPromoNotAssigned   = NewPromoInvalidError("Promo code is assigned to another user", ErrCodePromoNotAssigned)
	ErrPromoCodeTaken     = NewConflictError("Promo code already exists", ErrCodePromoCodeTaken)
	ErrRedemptionConflict = NewConcurrencyConflictError("Promo code was exhausted by a concurrent redemption", ErrCodeRedemptionConflict)

	ErrExpenseNotFound   = NewNotFoundError("Expense not found", ErrCodeExpenseNotFound)
	ErrIllegalTransition = NewIllegalTransitionError("Expense status transition is not allowed", ErrCodeIllegalTransition, http.StatusConflict)
	ErrApproverRequired  = NewIllegalTransitionError("Only an admin can change expense status", ErrCodeApproverRequired, http.StatusForbidden)
	ErrStatusChanged     = NewIllegalTransitionError("Expense status changed concurrently", ErrCodeStatusChanged, http.StatusConflict)

	ErrSalesPersonNotFound = NewNotFoundError("Sales person not found", ErrCodeSalesPersonNotFound)
	ErrSalesEmailTaken     = NewConflictError("Sales person email already exists", ErrCodeSalesEmailTaken)
	ErrCustomerNotFound    = NewNotFoundError("User not found", ErrCodeCustomerNotFound)

	ErrAdminRequired      = NewForbiddenError("Admin role required", ErrCodeAdminRequired)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrAccountNotFound    = NewNotFoundError("Dashboard account not found", ErrCodeAccountNotFound)
	ErrAccountEmailTaken  = NewConflictError("Dashboard account email already exists", ErrCodeAccountEmailTaken)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsPromoInvalid reports whether err is any redemption precondition failure.
func IsPromoInvalid(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypePromoInvalid
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
