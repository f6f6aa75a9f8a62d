package analyze

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// ErrQuotaExhausted marks the account-level out-of-credit condition. It
// is never retried: once the service reports exhausted quota, no further
// call in the batch can succeed, so it aborts the whole run. Callers
// check it with errors.Is.
var ErrQuotaExhausted = errors.New("analysis quota exhausted")

type errKind int

const (
	kindTransient errKind = iota
	kindRateLimit
	kindQuota
)

// Keyword sniffing over the service's error text is how quota exhaustion
// is distinguishable from ordinary failures. Kept in one place so the
// classification is testable in isolation.
var quotaSignals = []string{
	"insufficient credits",
	"credit balance",
	"too low",
	"credit",
	"tokens",
	"blocked",
	"purchase credits",
	"upgrade",
	"billing",
	"spend limit",
	"usage is blocked",
}

// classifyError sorts a service error into the retry taxonomy: rate
// limiting backs off, quota exhaustion is fatal, everything else is
// transient. The 429 check runs first: rate-limit messages mention
// token-per-minute budgets and must not trip the quota keywords.
func classifyError(err error) errKind {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
		return kindRateLimit
	}
	if isQuotaMessage(err.Error()) {
		return kindQuota
	}
	return kindTransient
}

func isQuotaMessage(msg string) bool {
	m := strings.ToLower(msg)
	for _, signal := range quotaSignals {
		if strings.Contains(m, signal) {
			return true
		}
	}
	return false
}
