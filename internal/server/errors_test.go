package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/necta-results/internal/extract"
	"github.com/jonathan/necta-results/internal/fetch"
	"github.com/jonathan/necta-results/internal/resolve"
	"github.com/jonathan/necta-results/internal/results"
	"github.com/jonathan/necta-results/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid password", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrUnavailable(t *testing.T) {
	err := &ErrUnavailable{Feature: "page cache"}
	assert.Equal(t, "page cache is not configured", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		kind     string
	}{
		{
			name:     "validation",
			err:      &types.ValidationError{Field: "year", Value: "1999", Message: "too early"},
			expected: http.StatusBadRequest,
			kind:     KindValidation,
		},
		{
			name:     "unsupported",
			err:      &resolve.UnsupportedError{Page: resolve.PageSummary, ExamType: types.ACSEE, Year: 2006},
			expected: http.StatusNotFound,
			kind:     KindUnsupported,
		},
		{
			name:     "not found",
			err:      &results.NotFoundError{SchoolNumber: "s9999", ExamType: types.CSEE, Year: 2022},
			expected: http.StatusNotFound,
			kind:     KindNotFound,
		},
		{
			name:     "remote wrapped",
			err:      fmt.Errorf("summary s0101: %w", &fetch.RemoteError{URL: "u", StatusCode: 500}),
			expected: http.StatusBadGateway,
			kind:     KindRemote,
		},
		{
			name:     "transport timeout",
			err:      &fetch.Error{URL: "u", Message: "request failed", Cause: context.DeadlineExceeded},
			expected: http.StatusGatewayTimeout,
			kind:     KindTimeout,
		},
		{
			name:     "transport failure",
			err:      &fetch.Error{URL: "u", Message: "request failed", Cause: errors.New("connection refused")},
			expected: http.StatusBadGateway,
			kind:     KindFetch,
		},
		{
			name:     "layout",
			err:      &extract.LayoutError{Message: "results table not found", TableIndex: 2, Row: -1},
			expected: http.StatusBadGateway,
			kind:     KindLayout,
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			expected: http.StatusInternalServerError,
			kind:     KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
			assert.Equal(t, tt.kind, ErrorKind(tt.err))
		})
	}
}
