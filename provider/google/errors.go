package google

import (
	"errors"
	"fmt"

	"google.golang.org/genai"

	crank "github.com/spetersoncode/crank"
)

// BlockedError indicates the prompt was blocked by content filtering.
type BlockedError struct {
	Reason string
}

// Error returns a formatted message including the block reason.
func (e *BlockedError) Error() string {
	return fmt.Sprintf("google: prompt blocked: %s", e.Reason)
}

// wrapError wraps a Google GenAI error with crank error categorization.
// genai.APIError does not expose headers, so no Retry-After is available.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.Code
	msg := err.Error()

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

func categorizeStatusCode(code int) crank.ErrorCategory {
	switch {
	case code == 429:
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
