// internal/common/errors/handler.go
package errors

// ErrorHandler turns failures into what a view should show. No error is fatal;
// every failure is scoped to the view that triggered it.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// Presentation describes how a view reacts to an error.
type Presentation struct {
	Category string
	Message  string
	// Retry is true when the view should offer a retry affordance.
	Retry bool
	// Absent is true for not-found; views take their alternate path (e.g. a creation form).
	Absent bool
	// Silent is true when nothing should be shown at all.
	Silent bool
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle classifies err for the named view and logs anything that is not silent.
func (h *ErrorHandler) Handle(view string, err error) Presentation {
	if err == nil {
		return Presentation{Silent: true}
	}

	stdErr := h.normalizeError(err)
	p := Presentation{
		Category: GetErrorCategory(stdErr.Code),
		Message:  stdErr.Message,
	}

	switch stdErr.Code {
	case ErrCodeValidationSkip:
		p.Silent = true
		return p
	case ErrCodeNotFound:
		p.Absent = true
	case ErrCodeInvalidInput:
	default:
		p.Retry = true
	}

	h.logError(view, stdErr)
	return p
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return NewTransientFailureError("request", err)
}

func (h *ErrorHandler) logError(view string, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	h.logger.Error("view request failed", map[string]interface{}{
		"view":          view,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"statusCode":    stdErr.StatusCode,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}
