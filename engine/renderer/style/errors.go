package style

import "fmt"

// ErrorKind classifies a style construction failure. All kinds are detected
// synchronously at construction or resource-creation time; none are retried
// and a failed construction leaves no partially-built style behind.
type ErrorKind int

const (
	// ErrorKindPipelineCompile indicates an invalid shader program or an
	// incompatible vertex/pipeline layout.
	ErrorKindPipelineCompile ErrorKind = iota

	// ErrorKindResourceCreation indicates a GPU resource (buffer, texture,
	// sampler, bind group) could not be created.
	ErrorKindResourceCreation

	// ErrorKindUnsupportedRotation indicates a degenerate axis pair that
	// cannot be expressed as a rotation.
	ErrorKindUnsupportedRotation
)

// String returns the human-readable name of the error kind.
//
// Returns:
//   - string: the error kind name
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindPipelineCompile:
		return "pipeline compile failure"
	case ErrorKindResourceCreation:
		return "resource creation failure"
	case ErrorKindUnsupportedRotation:
		return "unsupported rotation"
	default:
		return "unknown style failure"
	}
}

// Error is a typed style-layer failure carrying the failure kind, the
// operation that failed, and the underlying cause.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op names the operation that failed, e.g. "compile foreground pipeline".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
//
// Returns:
//   - string: the formatted error message
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
//
// Returns:
//   - error: the wrapped error, or nil
func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps a cause as a typed style Error.
func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
