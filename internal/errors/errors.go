package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Column  string // column the failed operation targeted, if any
	Op      string // attempted operation, e.g. "rename" or "impute"
	Cause   error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Column != "" {
		msg = fmt.Sprintf("%s (column %q)", msg, e.Column)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError carrying the same code, so callers can test
// against the package sentinels with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Column:  appErr.Column,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Column:  appErr.Column,
			Op:      appErr.Op,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// WithOp returns a copy of err annotated with the attempted operation.
// Non-AppErrors are wrapped as internal errors.
func WithOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		cp := *appErr
		cp.Op = op
		return &cp
	}
	return &AppError{Code: CodeInternalError, Message: err.Error(), Op: op, Cause: err}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// GetColumn returns the column an AppError refers to, or "".
func GetColumn(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Column
	}
	return ""
}

// Predefined error codes
const (
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeLoadError             = "LOAD_ERROR"
	CodeColumnNotFound        = "COLUMN_NOT_FOUND"
	CodeDuplicateColumnName   = "DUPLICATE_COLUMN_NAME"
	CodeStrategyNotApplicable = "STRATEGY_NOT_APPLICABLE"
	CodeInvalidCustomValue    = "INVALID_CUSTOM_VALUE"
	CodeUnknownType           = "UNKNOWN_TYPE"
	CodeImputationFailed      = "IMPUTATION_FAILED"
	CodeCancelled             = "CANCELLED"
)

// Sentinels for errors.Is; matching is by code only.
var (
	ErrLoad                  = New(CodeLoadError, "load failed")
	ErrColumnNotFound        = New(CodeColumnNotFound, "column not found")
	ErrDuplicateColumnName   = New(CodeDuplicateColumnName, "duplicate column name")
	ErrStrategyNotApplicable = New(CodeStrategyNotApplicable, "strategy not applicable")
	ErrInvalidCustomValue    = New(CodeInvalidCustomValue, "invalid custom value")
	ErrUnknownType           = New(CodeUnknownType, "unknown column type")
	ErrImputationFailed      = New(CodeImputationFailed, "imputation failed")
	ErrInvalidInput          = New(CodeInvalidInput, "invalid input")
	ErrNotFound              = New(CodeNotFound, "not found")
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// LoadError reports empty or unparseable input. The user must re-upload.
func LoadError(message string, cause error) *AppError {
	return &AppError{Code: CodeLoadError, Message: message, Cause: cause}
}

func ColumnNotFound(column string) *AppError {
	return &AppError{Code: CodeColumnNotFound, Message: "column not found", Column: column}
}

func DuplicateColumnName(column string) *AppError {
	return &AppError{Code: CodeDuplicateColumnName, Message: "a column with this name already exists", Column: column}
}

// StrategyNotApplicable signals a caller bug: the strategy should never have
// been offered for a column of this semantic type.
func StrategyNotApplicable(column, strategy, semantic string) *AppError {
	return &AppError{
		Code:    CodeStrategyNotApplicable,
		Message: fmt.Sprintf("strategy %s is not applicable to %s columns", strategy, semantic),
		Column:  column,
	}
}

func InvalidCustomValue(column, value string, cause error) *AppError {
	return &AppError{
		Code:    CodeInvalidCustomValue,
		Message: fmt.Sprintf("custom value %q cannot be used for this column", value),
		Column:  column,
		Cause:   cause,
	}
}

// UnknownType is an invariant violation: the classifier and the load-time
// coercion set disagree.
func UnknownType(column, declared string) *AppError {
	return &AppError{
		Code:    CodeUnknownType,
		Message: fmt.Sprintf("declared type %q is not recognized", declared),
		Column:  column,
	}
}

// Cancelled reports a request abandoned by the client before it was served.
func Cancelled(message string, cause error) *AppError {
	return &AppError{Code: CodeCancelled, Message: message, Cause: cause}
}

func ImputationFailed(column, message string) *AppError {
	return &AppError{Code: CodeImputationFailed, Message: message, Column: column}
}
