package analysis

import "fmt"

// Kind classifies why an image could not be analysed.
type Kind string

const (
	KindInvalidInputPath Kind = "invalid_input_path"
	KindDecode           Kind = "decode"
	KindMalformedImage   Kind = "malformed_image"
	KindRender           Kind = "render"
	KindFilesystem       Kind = "filesystem"
)

// Error reports a failure for one input path.
type Error struct {
	Kind  Kind
	Path  string
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Cause: cause}
}
