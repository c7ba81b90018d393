package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad input"), false},
		{"marked", Transient(errors.New("flaky")), true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"openai 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"openai 503", fmt.Errorf("wrapped: %w", &openai.APIError{HTTPStatusCode: 503}), true},
		{"openai 400", &openai.APIError{HTTPStatusCode: 400}, false},
		{"request 502", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, true},
		{"minio 500", minio.ErrorResponse{StatusCode: 500, Code: "InternalError"}, true},
		{"minio 403", minio.ErrorResponse{StatusCode: 403, Code: "AccessDenied"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestClassifyKeepsCause(t *testing.T) {
	cause := &openai.APIError{HTTPStatusCode: 500}
	err := classify(fmt.Errorf("call: %w", cause))
	assert.ErrorIs(t, err, ErrTransient)

	var apiErr *openai.APIError
	assert.ErrorAs(t, err, &apiErr)

	permanent := errors.New("invalid")
	assert.Same(t, permanent, classify(permanent))
}
