package client

import (
	"errors"
	"fmt"
)

// Kind classifies why a submission did not produce an account.
type Kind int

const (
	KindUnknown Kind = iota
	// KindOffline means the connectivity check failed and nothing was sent.
	KindOffline
	// KindTimeout means the request was aborted after the client timeout.
	KindTimeout
	// KindNetwork means the server could not be reached.
	KindNetwork
	// KindRejected means the server answered with ok:false.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindOffline:
		return "offline"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	}
	return "unknown"
}

var ErrNoBootstrap = errors.New("no session bootstrap available")

type SubmitError struct {
	Kind    Kind
	Status  int
	Message string
	// Detail is the server's underlying error text, if it sent one.
	Detail string
	// Fields holds per-field rejections reported by the server.
	Fields map[string]string
	Err    error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Retryable reports whether resubmitting the same data may succeed.
func (e *SubmitError) Retryable() bool {
	return e.Kind != KindRejected
}

// HandoffError is returned when a bootstrap could not be turned into a
// session. The user has to start over.
type HandoffError struct {
	Step    string
	Status  int
	Message string
	Code    string
}

func (e *HandoffError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("handoff %s failed (%d %s): %s", e.Step, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("handoff %s failed (%d): %s", e.Step, e.Status, e.Message)
}
