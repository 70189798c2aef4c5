package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrAgentNotFound    = fmt.Errorf("agent not found")
	ErrAgentDuplicate   = fmt.Errorf("agent already registered")
	ErrNoHealthyAgent   = fmt.Errorf("no suitable healthy agent available")
	ErrUnknownAgentType = fmt.Errorf("unknown agent type")
	ErrInvalidDecision  = fmt.Errorf("malformed routing decision")
	ErrClassification   = fmt.Errorf("classification provider failed")
	ErrAgentInvoke      = fmt.Errorf("agent invocation failed")
	ErrSynthesis        = fmt.Errorf("result synthesis failed")
	ErrAuditWrite       = fmt.Errorf("audit log write failed")
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrRateLimit        = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid      = fmt.Errorf("authentication failed")
	ErrProviderError    = fmt.Errorf("provider error")
)

// DomainError wraps a sentinel error with operation context.
type DomainError struct {
	Op     string // operation name (e.g., "Manager.Register")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring.
type ErrorCode string

const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeAgentNotFound    ErrorCode = "AGENT_NOT_FOUND"
	CodeAgentDuplicate   ErrorCode = "AGENT_DUPLICATE"
	CodeNoHealthyAgent   ErrorCode = "NO_HEALTHY_AGENT"
	CodeUnknownAgentType ErrorCode = "UNKNOWN_AGENT_TYPE"
	CodeInvalidDecision  ErrorCode = "INVALID_DECISION"
	CodeClassification   ErrorCode = "CLASSIFICATION_FAILED"
	CodeAgentInvoke      ErrorCode = "AGENT_INVOKE"
	CodeSynthesis        ErrorCode = "SYNTHESIS_FAILED"
	CodeAuditWrite       ErrorCode = "AUDIT_WRITE"
	CodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid      ErrorCode = "AUTH_INVALID"
	CodeProviderError    ErrorCode = "PROVIDER_ERROR"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrAgentNotFound:    CodeAgentNotFound,
	ErrAgentDuplicate:   CodeAgentDuplicate,
	ErrNoHealthyAgent:   CodeNoHealthyAgent,
	ErrUnknownAgentType: CodeUnknownAgentType,
	ErrInvalidDecision:  CodeInvalidDecision,
	ErrClassification:   CodeClassification,
	ErrAgentInvoke:      CodeAgentInvoke,
	ErrSynthesis:        CodeSynthesis,
	ErrAuditWrite:       CodeAuditWrite,
	ErrConfigLoad:       CodeConfigLoad,
	ErrRateLimit:        CodeRateLimit,
	ErrAuthInvalid:      CodeAuthInvalid,
	ErrProviderError:    CodeProviderError,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and walks the chain with errors.Is.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}
