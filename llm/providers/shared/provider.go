package shared

import (
	"errors"
	"fmt"
	"strings"
)

// ClassifyModel partitions known OpenAI model identifiers into the two
// response-shape families. The classification is total: any identifier
// outside both families is a fatal configuration error, never a silent
// fallback.
func ClassifyModel(model string) (ModelFamily, error) {
	switch model {
	case "gpt-3.5-turbo-instruct", "babbage-002", "davinci-002":
		return FamilyCompletion, nil
	}
	if strings.HasPrefix(model, "gpt-4") || strings.HasPrefix(model, "gpt-3") {
		return FamilyChat, nil
	}
	return 0, &ProviderError{
		Code:    ErrCodeUnsupportedModel,
		Message: fmt.Sprintf("model %q belongs to neither known response-shape family", model),
	}
}

// NormalizeError normalizes arbitrary errors to ProviderError. Errors that
// already carry a code pass through unchanged.
func NormalizeError(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// HasCode reports whether err is a ProviderError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}

// ValidateQueryRequest validates a query request before it reaches the
// backend. Bias values outside the provider's accepted range are rejected by
// the provider itself, not here.
func ValidateQueryRequest(req *QueryRequest) error {
	if req == nil {
		return &ProviderError{
			Code:    ErrCodeConfig,
			Message: "request cannot be nil",
		}
	}
	if req.Prefix == "" {
		return &ProviderError{
			Code:    ErrCodeConfig,
			Message: "prefix cannot be empty",
		}
	}
	for id := range req.Bias {
		if id < 0 {
			return &ProviderError{
				Code:    ErrCodeConfig,
				Message: fmt.Sprintf("logit bias key %d: token ids are non-negative", id),
			}
		}
	}
	return nil
}
