package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchError_ErrorFormat(t *testing.T) {
	err := New(KindRateLimit, "tavily", "too many requests")
	assert.Equal(t, "[RATE_LIMIT] tavily: too many requests", err.Error())

	noProvider := New(KindTimeout, "", "deadline hit")
	assert.Equal(t, "[TIMEOUT] deadline hit", noProvider.Error())
}

func TestSearchError_IsMatchesByKind(t *testing.T) {
	err := New(KindAuthentication, "kagi", "bad key")
	assert.True(t, errors.Is(err, &SearchError{Kind: KindAuthentication}))
	assert.False(t, errors.Is(err, &SearchError{Kind: KindRateLimit}))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(KindProviderError, "brave", cause)

	require.NotNil(t, err)
	assert.Equal(t, KindProviderError, err.Kind)
	assert.Equal(t, "brave", err.Provider)
	assert.ErrorIs(t, err, cause)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(KindProviderError, "brave", nil))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"search error", New(KindRateLimit, "tavily", "x"), KindRateLimit},
		{"wrapped search error", fmt.Errorf("outer: %w", New(KindTimeout, "kagi", "x")), KindTimeout},
		{"context deadline", context.DeadlineExceeded, KindTimeout},
		{"plain error", errors.New("boom"), KindAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, KindProviderError.Retryable())
	assert.True(t, KindTimeout.Retryable())
	assert.True(t, KindAPIError.Retryable())
	assert.False(t, KindRateLimit.Retryable())
	assert.False(t, KindInvalidInput.Retryable())
	assert.False(t, KindAuthentication.Retryable())
	assert.False(t, KindCreditExhausted.Retryable())
	assert.False(t, KindQuotaExceeded.Retryable())
}

func TestRefineKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		message string
		want    Kind
	}{
		{"credit language", KindAPIError, "monthly credit exceeded", KindCreditExhausted},
		{"quota language", KindAPIError, "quota reached", KindCreditExhausted},
		{"limit language", KindAPIError, "usage limit hit", KindCreditExhausted},
		{"invalid api key", KindAPIError, "Invalid API key supplied", KindAuthentication},
		{"unauthorized", KindAPIError, "Unauthorized", KindAuthentication},
		{"plain api error", KindAPIError, "something odd", KindAPIError},
		{"non catch-all untouched", KindProviderError, "quota reached", KindProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RefineKind(tt.kind, tt.message))
		})
	}
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusForbidden, KindAuthentication},
		{http.StatusPaymentRequired, KindCreditExhausted},
		{http.StatusInternalServerError, KindProviderError},
		{http.StatusBadGateway, KindProviderError},
		{http.StatusBadRequest, KindInvalidInput},
		{http.StatusNotFound, KindInvalidInput},
		{http.StatusNoContent, KindAPIError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := FromHTTPStatus("tavily", tt.status, "body")
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, "tavily", err.Provider)
		})
	}
}

func TestWithRetryAfter(t *testing.T) {
	reset := time.Now().Add(10 * time.Minute)
	err := New(KindRateLimit, "tavily", "slow down").WithRetryAfter(reset)

	got := RetryAfterOf(err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(reset))

	assert.Nil(t, RetryAfterOf(errors.New("plain")))
}
