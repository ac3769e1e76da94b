package core

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"whispr/core/provider"
)

// ErrorKind is the classification of a failed completion.
type ErrorKind int

const (
	KindUnclassified ErrorKind = iota
	KindTransientOverload
	KindInvalidCredential
	KindQuotaExceeded
	KindPermissionDenied
	KindNetworkUnavailable
)

var kindNames = [...]string{
	KindUnclassified:       "unclassified",
	KindTransientOverload:  "transient_overload",
	KindInvalidCredential:  "invalid_credential",
	KindQuotaExceeded:      "quota_exceeded",
	KindPermissionDenied:   "permission_denied",
	KindNetworkUnavailable: "network_unavailable",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Transient reports whether the kind is recovered locally by fallback or retry.
func (k ErrorKind) Transient() bool {
	return k == KindTransientOverload
}

// Message substrings checked when a provider did not wrap a sentinel.
// Matching is case-insensitive and the groups are tried in order. A bare
// "unavailable" is not an overload signature: gRPC reports lost connectivity
// as code Unavailable too.
var (
	overloadSignatures   = []string{"503", "overloaded", "service unavailable"}
	credentialSignatures = []string{"api key", "api_key", "401", "unauthenticated"}
	quotaSignatures      = []string{"quota", "billing", "resource_exhausted", "429"}
	permissionSignatures = []string{"permission", "403", "forbidden"}
	networkSignatures    = []string{"network", "no such host", "enotfound", "connection refused", "dial tcp"}
)

// Classify maps an error to an ErrorKind. Provider sentinels win; otherwise
// the error text is matched against known signatures.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnclassified
	}

	switch {
	case errors.Is(err, provider.ErrOverloaded):
		return KindTransientOverload
	case errors.Is(err, provider.ErrInvalidCredential):
		return KindInvalidCredential
	case errors.Is(err, provider.ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, provider.ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, provider.ErrNetwork):
		return KindNetworkUnavailable
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return KindNetworkUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, overloadSignatures):
		return KindTransientOverload
	case containsAny(msg, credentialSignatures):
		return KindInvalidCredential
	case containsAny(msg, quotaSignatures):
		return KindQuotaExceeded
	case containsAny(msg, permissionSignatures):
		return KindPermissionDenied
	case containsAny(msg, networkSignatures):
		return KindNetworkUnavailable
	}
	return KindUnclassified
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CompletionError is returned by Client when a completion fails. Its message
// is suitable for showing to the user; Unwrap exposes the provider error.
type CompletionError struct {
	Kind ErrorKind
	Err  error
}

func (e *CompletionError) Error() string {
	switch e.Kind {
	case KindInvalidCredential:
		return "Invalid API key - please check your API key configuration"
	case KindQuotaExceeded:
		return "API quota exceeded - please check your plan and billing details"
	case KindPermissionDenied:
		return "API permission denied - please enable the generative API for this key"
	case KindNetworkUnavailable:
		return "Network error - please check your internet connection"
	case KindTransientOverload:
		// Recovery was exhausted; surface the last underlying error as is.
		return e.Err.Error()
	default:
		return "AI service error: " + e.Err.Error()
	}
}

func (e *CompletionError) Unwrap() error { return e.Err }

// KindOf returns the classification carried by err, or classifies it.
func KindOf(err error) ErrorKind {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Classify(err)
}
