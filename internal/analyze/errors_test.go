package analyze

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestClassifyErrorQuotaKeywords(t *testing.T) {
	cases := []string{
		"Your credit balance is too low to access the Anthropic API",
		"insufficient credits remaining",
		"organization has been blocked",
		"please purchase credits or upgrade your plan",
		"monthly spend limit reached",
	}
	for _, msg := range cases {
		if got := classifyError(errors.New(msg)); got != kindQuota {
			t.Errorf("classifyError(%q) = %v, want kindQuota", msg, got)
		}
	}
}

func TestClassifyErrorTransient(t *testing.T) {
	cases := []string{
		"connection reset by peer",
		"internal server error",
		"overloaded_error: the API is temporarily overloaded",
	}
	for _, msg := range cases {
		if got := classifyError(errors.New(msg)); got != kindTransient {
			t.Errorf("classifyError(%q) = %v, want kindTransient", msg, got)
		}
	}
}

// A 429 must classify as rate-limited even though its message mentions
// token budgets, which would otherwise trip the quota keywords.
func TestClassifyErrorRateLimitBeatsQuotaKeywords(t *testing.T) {
	apierr := &anthropic.Error{StatusCode: http.StatusTooManyRequests}
	if got := classifyError(apierr); got != kindRateLimit {
		t.Fatalf("classifyError(429) = %v, want kindRateLimit", got)
	}
}

func TestErrQuotaExhaustedWrapping(t *testing.T) {
	err := fmt.Errorf("%w: credit balance too low", ErrQuotaExhausted)
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatal("wrapped quota error should satisfy errors.Is")
	}
}
