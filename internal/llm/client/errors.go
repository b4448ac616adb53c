package client

import (
	"context"
	"errors"
	"net"
	"strings"

	"google.golang.org/genai"
)

// ErrorKind classifies a provider failure for display and handling.
type ErrorKind string

const (
	KindTimeout       ErrorKind = "timeout"
	KindAuth          ErrorKind = "auth"
	KindNotFound      ErrorKind = "not_found"
	KindQuota         ErrorKind = "quota"
	KindBlocked       ErrorKind = "blocked"
	KindEmptyResponse ErrorKind = "empty_response"
	KindNetwork       ErrorKind = "network"
	KindUnknown       ErrorKind = "unknown"
)

// Classify maps an error returned by a chat model to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	if kind, ok := classifyAPIError(err); ok {
		return kind
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	return classifyText(err.Error())
}

func classifyAPIError(err error) (ErrorKind, bool) {
	var code int
	var status string
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status = apiErr.Code, apiErr.Status
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code, status = apiErrPtr.Code, apiErrPtr.Status
	default:
		return "", false
	}

	switch {
	case code == 401 || code == 403 || status == "PERMISSION_DENIED" || status == "UNAUTHENTICATED":
		return KindAuth, true
	case code == 404 || status == "NOT_FOUND":
		return KindNotFound, true
	case code == 429 || status == "RESOURCE_EXHAUSTED":
		return KindQuota, true
	case code == 504 || status == "DEADLINE_EXCEEDED":
		return KindTimeout, true
	case code >= 500:
		return KindNetwork, true
	}
	return classifyText(err.Error()), true
}

func classifyText(msg string) ErrorKind {
	m := strings.ToLower(msg)
	switch {
	case containsAny(m, "deadline exceeded", "timeout", "timed out"):
		return KindTimeout
	case containsAny(m, "api key", "api_key", "unauthorized", "unauthenticated", "permission denied", "401", "403", "authentication"):
		return KindAuth
	case containsAny(m, "quota", "rate limit", "resource_exhausted", "resource exhausted", "429", "too many requests"):
		return KindQuota
	case containsAny(m, "blocked", "safety", "finish_reason: safety", "prohibited_content", "content_filter"):
		return KindBlocked
	case containsAny(m, "not found", "404", "does not exist"):
		return KindNotFound
	case containsAny(m, "connection refused", "connection reset", "no such host", "eof", "network", "tls"):
		return KindNetwork
	}
	return KindUnknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
