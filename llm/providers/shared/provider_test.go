package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyModelCompletionFamily(t *testing.T) {
	for _, model := range []string{"gpt-3.5-turbo-instruct", "babbage-002", "davinci-002"} {
		family, err := ClassifyModel(model)
		require.NoError(t, err, model)
		assert.Equal(t, FamilyCompletion, family, model)
	}
}

func TestClassifyModelChatFamily(t *testing.T) {
	for _, model := range []string{"gpt-4", "gpt-4o", "gpt-4-turbo", "gpt-3.5-turbo"} {
		family, err := ClassifyModel(model)
		require.NoError(t, err, model)
		assert.Equal(t, FamilyChat, family, model)
	}
}

func TestClassifyModelRejectsUnknownIdentifiers(t *testing.T) {
	for _, model := range []string{"", "text-ada-001", "claude-3", "llama3.1:8b"} {
		_, err := ClassifyModel(model)
		require.Error(t, err, model)
		assert.True(t, HasCode(err, ErrCodeUnsupportedModel), model)
	}
}

func TestModelFamilyString(t *testing.T) {
	assert.Equal(t, "completion", FamilyCompletion.String())
	assert.Equal(t, "chat", FamilyChat.String())
	assert.Equal(t, "unknown", ModelFamily(99).String())
}

func TestNormalizeErrorPassesProviderErrorsThrough(t *testing.T) {
	pe := &ProviderError{Code: ErrCodeEmptyResponse, Message: "zero choices"}
	assert.Same(t, pe, NormalizeError(pe))

	wrapped := fmt.Errorf("query failed: %w", pe)
	assert.Same(t, pe, NormalizeError(wrapped))
}

func TestNormalizeErrorWrapsUnknownErrors(t *testing.T) {
	assert.Nil(t, NormalizeError(nil))

	out := NormalizeError(errors.New("connection refused"))
	assert.Equal(t, ErrCodeUnknown, out.Code)
	assert.Equal(t, "connection refused", out.Message)
}

func TestHasCode(t *testing.T) {
	err := &ProviderError{Code: ErrCodeRetriesExhausted, Message: "gave up"}
	assert.True(t, HasCode(err, ErrCodeRetriesExhausted))
	assert.False(t, HasCode(err, ErrCodeEmptyResponse))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeRetriesExhausted))
	assert.False(t, HasCode(nil, ErrCodeRetriesExhausted))
}

func TestValidateQueryRequest(t *testing.T) {
	assert.True(t, HasCode(ValidateQueryRequest(nil), ErrCodeConfig))
	assert.True(t, HasCode(ValidateQueryRequest(&QueryRequest{}), ErrCodeConfig))

	bad := &QueryRequest{Prefix: "p", Bias: LogitBias{-1: 5}}
	assert.True(t, HasCode(ValidateQueryRequest(bad), ErrCodeConfig))

	ok := &QueryRequest{Prefix: "p", Bias: LogitBias{42: -100}}
	assert.NoError(t, ValidateQueryRequest(ok))
	assert.NoError(t, ValidateQueryRequest(&QueryRequest{Prefix: "p"}))
}
