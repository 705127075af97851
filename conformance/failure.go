// Package conformance runs named suites of scenarios against a
// chat-completions target and reduces streamed chunk sequences back into
// single logical completions.
package conformance

import (
	"github.com/Laisky/errors/v2"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// FailureKind names the layer a scenario failure came from, so a report can
// tell a broken connection from a malformed stream or a plain mismatch.
type FailureKind string

const (
	// FailureTransport is a connection or network failure unrelated to
	// application semantics.
	FailureTransport FailureKind = "transport"
	// FailureProtocol is a malformed or incomplete response or stream that
	// violates the wire data model.
	FailureProtocol FailureKind = "protocol"
	// FailureAssertion is an observed value that did not match the
	// scenario's expectation.
	FailureAssertion FailureKind = "assertion"
)

type failure struct {
	kind FailureKind
	err  error
}

func (f *failure) Error() string {
	return string(f.kind) + ": " + f.err.Error()
}

func (f *failure) Unwrap() error {
	return f.err
}

// KindOf extracts the failure kind from a scenario error. Errors produced
// outside the harness's own helpers count as assertion failures.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	var f *failure
	if errors.As(err, &f) {
		return f.kind
	}
	return FailureAssertion
}

func transportErr(err error, msg string) error {
	return &failure{kind: FailureTransport, err: errors.Wrap(err, msg)}
}

func protocolErrf(format string, args ...any) error {
	return &failure{kind: FailureProtocol, err: errors.Errorf(format, args...)}
}

func assertionErrf(format string, args ...any) error {
	return &failure{kind: FailureAssertion, err: errors.Errorf(format, args...)}
}

// callFailed wraps an unexpected error from a call that a scenario expected
// to succeed. A structured answer from the target is a broken expectation;
// anything else never reached application semantics at all.
func callFailed(err error, msg string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &failure{kind: FailureAssertion, err: errors.Wrap(err, msg)}
	}
	return &failure{kind: FailureTransport, err: errors.Wrap(err, msg)}
}
