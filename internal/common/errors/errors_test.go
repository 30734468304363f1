package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) Error(msg string, fields map[string]interface{}) {
	r.messages = append(r.messages, msg)
}

// ==========================
// Classification Tests
// ==========================

func TestClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantNotFound  bool
		wantRetryable bool
		wantSkip      bool
	}{
		{
			name:          "not found",
			err:           NewNotFoundError("company", "unknown-co"),
			wantNotFound:  true,
			wantRetryable: false,
		},
		{
			name:          "status failure",
			err:           NewStatusError("get company", 500, "boom"),
			wantRetryable: true,
		},
		{
			name:          "network failure",
			err:           NewTransientFailureError("get company", stderrors.New("connection refused")),
			wantRetryable: true,
		},
		{
			name:          "invalid response",
			err:           NewInvalidResponseError("get company", stderrors.New("bad json")),
			wantRetryable: false,
		},
		{
			name:     "validation skip",
			err:      NewValidationSkipError("feedback_comment"),
			wantSkip: true,
		},
		{
			name:          "wrapped not found",
			err:           fmt.Errorf("load profile: %w", NewNotFoundError("company", "x")),
			wantNotFound:  true,
			wantRetryable: false,
		},
		{
			name:          "unclassified error",
			err:           stderrors.New("plain"),
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNotFound, IsNotFound(tt.err))
			assert.Equal(t, tt.wantRetryable, IsRetryable(tt.err))
			assert.Equal(t, tt.wantSkip, IsValidationSkip(tt.err))
		})
	}
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 2, GetRetryCount(ErrCodeTransientFailure))
	assert.Equal(t, 0, GetRetryCount(ErrCodeNotFound))
	assert.Equal(t, 0, GetRetryCount(ErrCodeValidationSkip))
	assert.Equal(t, 0, GetRetryCount(ErrCodeInvalidResponse))
}

func TestStatusErrorMessageCarriesStatus(t *testing.T) {
	err := NewStatusError("fetch recommendations", 503, "")
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, 503, err.StatusCode)
}

func TestTransientFailureUnwraps(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := NewTransientFailureError("get tender", cause)
	assert.True(t, stderrors.Is(err, cause))
}

// ==========================
// Handler Tests
// ==========================

func TestErrorHandler_Handle(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	p := h.Handle("company", NewNotFoundError("company", "unknown-co"))
	assert.True(t, p.Absent)
	assert.False(t, p.Retry)

	p = h.Handle("recommendations", NewStatusError("fetch recommendations", 500, ""))
	assert.True(t, p.Retry)
	assert.Equal(t, "REMOTE", p.Category)

	p = h.Handle("feedback", NewValidationSkipError("feedback_comment"))
	assert.True(t, p.Silent)

	p = h.Handle("tender", stderrors.New("unexpected"))
	assert.True(t, p.Retry)

	require.Len(t, log.messages, 3)
}

func TestErrorHandler_NilError(t *testing.T) {
	h := NewErrorHandler(nil)
	assert.True(t, h.Handle("any", nil).Silent)
}
