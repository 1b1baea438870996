package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeBrowser represents browser host faults (launch, navigation, crash)
	ErrorTypeBrowser ErrorType = "browser"
	// ErrorTypeReadiness represents a chat panel that never became ready
	ErrorTypeReadiness ErrorType = "readiness"
	// ErrorTypeExtraction represents a failed DOM query on a single poll
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeExport represents spreadsheet or CSV export errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// SessionError represents an error raised while running a chat session
type SessionError struct {
	Type    ErrorType
	Stage   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *SessionError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Stage != "" {
		prefix = fmt.Sprintf("[%s] %s:", e.Type, e.Stage)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s - %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if the error must end the session
func (e *SessionError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeBrowser, ErrorTypeExport, ErrorTypeValidation, ErrorTypeConfiguration:
		return true
	case ErrorTypeReadiness, ErrorTypeExtraction, ErrorTypePublisher:
		return false
	default:
		return false
	}
}

// New creates a new SessionError
func New(errType ErrorType, stage, message string, err error) *SessionError {
	return &SessionError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewBrowser creates a new browser error
func NewBrowser(stage, message string, err error) *SessionError {
	return New(ErrorTypeBrowser, stage, message, err)
}

// NewReadiness creates a new readiness error
func NewReadiness(message string, err error) *SessionError {
	return New(ErrorTypeReadiness, "awaiting_chat_ready", message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(message string, err error) *SessionError {
	return New(ErrorTypeExtraction, "polling", message, err)
}

// NewExport creates a new export error
func NewExport(path, message string, err error) *SessionError {
	return New(ErrorTypeExport, path, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(message string, err error) *SessionError {
	return New(ErrorTypePublisher, "", message, err)
}

// NewValidation creates a new validation error
func NewValidation(message string) *SessionError {
	return New(ErrorTypeValidation, "", message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *SessionError {
	return New(ErrorTypeConfiguration, "", message, err)
}
