package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/necta-results/internal/extract"
	"github.com/jonathan/necta-results/internal/fetch"
	"github.com/jonathan/necta-results/internal/resolve"
	"github.com/jonathan/necta-results/internal/results"
	"github.com/jonathan/necta-results/internal/types"
)

// Error kinds reported in the "error" field of JSON error bodies.
const (
	KindValidation         = "validation_error"
	KindUnsupported        = "unsupported_combination"
	KindNotFound           = "not_found"
	KindRemote             = "remote_error"
	KindTimeout            = "timeout"
	KindFetch              = "fetch_error"
	KindLayout             = "layout_error"
	KindInvalidCredentials = "invalid_credentials"
	KindUnavailable        = "unavailable"
	KindInternal           = "internal_error"
)

// ErrInvalidCredentials indicates a wrong admin password
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid password"
}

// ErrUnavailable indicates a feature that is not configured on this server
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return e.Feature + " is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// ErrorKind returns the machine readable kind for an error
func ErrorKind(err error) string {
	_, kind := classify(err)
	return kind
}

func classify(err error) (int, string) {
	var (
		validationErr  *types.ValidationError
		unsupportedErr *resolve.UnsupportedError
		notFoundErr    *results.NotFoundError
		remoteErr      *fetch.RemoteError
		fetchErr       *fetch.Error
		layoutErr      *extract.LayoutError
		credentialsErr *ErrInvalidCredentials
		unavailableErr *ErrUnavailable
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, KindValidation
	case errors.As(err, &unsupportedErr):
		return http.StatusNotFound, KindUnsupported
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, KindNotFound
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway, KindRemote
	case errors.As(err, &fetchErr):
		if fetchErr.Timeout() {
			return http.StatusGatewayTimeout, KindTimeout
		}
		return http.StatusBadGateway, KindFetch
	case errors.As(err, &layoutErr):
		return http.StatusBadGateway, KindLayout
	case errors.As(err, &credentialsErr):
		return http.StatusUnauthorized, KindInvalidCredentials
	case errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable, KindUnavailable
	default:
		return http.StatusInternalServerError, KindInternal
	}
}
