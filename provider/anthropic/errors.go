package anthropic

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	crank "github.com/spetersoncode/crank"
)

// wrapError wraps an Anthropic SDK error with crank error categorization.
// It extracts status codes and Retry-After headers for retry handling.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		// Likely a network error; the retry heuristics handle those.
		return err
	}

	code := apiErr.StatusCode
	retryAfter := parseRetryAfter(apiErr.Response)
	msg := err.Error()

	if retryAfter > 0 {
		return crank.NewTransientErrorWithRetry(msg, code, retryAfter, err)
	}

	switch categorizeStatusCode(code) {
	case crank.ErrorTransient:
		return crank.NewTransientError(msg, code, err)
	case crank.ErrorPermanent:
		return crank.NewPermanentError(msg, code, err)
	case crank.ErrorUserInput:
		return crank.NewUserInputError(msg, err)
	default:
		return err
	}
}

// categorizeStatusCode determines the error category from an HTTP status
// code. Anthropic's 529 (overloaded) counts as transient.
func categorizeStatusCode(code int) crank.ErrorCategory {
	switch {
	case code == 429 || code == 529:
		return crank.ErrorTransient
	case code >= 500 && code < 600:
		return crank.ErrorTransient
	case code == 401 || code == 403:
		return crank.ErrorPermanent
	case code == 400 || code == 404 || code == 422:
		return crank.ErrorUserInput
	default:
		return crank.ErrorPermanent
	}
}

// parseRetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is not present or cannot be parsed.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}
