package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Category classifies a backend failure for the executor's chain walk.
type Category string

const (
	// CategoryContentPolicy marks a rejection by the provider's content
	// filter. Eligible for one sanitized re-prompt at the first chain
	// position.
	CategoryContentPolicy Category = "content_policy"
	// CategoryRateLimit marks a 429 or provider throttle response.
	CategoryRateLimit Category = "rate_limit"
	// CategoryTransport marks network and server-side failures.
	CategoryTransport Category = "transport"
)

// AdapterError wraps provider errors with status metadata.
type AdapterError struct {
	Status    int
	Category  Category
	Temporary bool
	Err       error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "adapter error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("adapter error (status=%d category=%s)", e.Status, e.Category)
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsContentPolicy reports whether an error is a content-policy
// rejection.
func IsContentPolicy(err error) bool {
	var adapterErr *AdapterError
	return errors.As(err, &adapterErr) && adapterErr.Category == CategoryContentPolicy
}

// IsRateLimited reports whether an error is a rate-limit response.
func IsRateLimited(err error) bool {
	var adapterErr *AdapterError
	if !errors.As(err, &adapterErr) {
		return false
	}
	return adapterErr.Category == CategoryRateLimit || adapterErr.Status == 429
}

// IsTransient reports whether an error is safe to retry on another
// chain position.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		if adapterErr.Temporary {
			return true
		}
		if adapterErr.Status == 429 || (adapterErr.Status >= 500 && adapterErr.Status <= 599) {
			return true
		}
	}
	return false
}

// classify builds an AdapterError from a provider status code and
// message. Content-filter rejections surface as 4xx responses whose
// message names the policy machinery.
func classify(status int, message string, err error) *AdapterError {
	category := CategoryTransport
	temporary := status == 429 || (status >= 500 && status <= 599)
	switch {
	case status == 429:
		category = CategoryRateLimit
	case status >= 400 && status < 500 && looksLikePolicyRejection(message):
		category = CategoryContentPolicy
		temporary = false
	}
	if err == nil {
		err = fmt.Errorf("%s (status=%d)", message, status)
	}
	return &AdapterError{Status: status, Category: category, Temporary: temporary, Err: err}
}

// looksLikePolicyRejection matches the phrases providers use for
// content-filter refusals.
func looksLikePolicyRejection(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range []string{"content policy", "content_policy", "content filter", "content_filter", "safety", "harm", "blocked", "refused", "usage policies"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// NewContentPolicyError builds a content-policy AdapterError. Exposed
// for tests and for adapters whose SDKs report filtering without an
// HTTP error.
func NewContentPolicyError(status int, message string) *AdapterError {
	return &AdapterError{
		Status:   status,
		Category: CategoryContentPolicy,
		Err:      fmt.Errorf("%s", message),
	}
}
