package analysis

import (
	"errors"
	"fmt"

	"github.com/ironsheep/leafmeter/internal/imaging"
)

// DecodeError reports an input that could not be decoded into an image.
type DecodeError = imaging.DecodeError

// ErrInvalidReferenceArea is returned when the real-world area of the
// reference square is zero, negative, NaN or infinite.
var ErrInvalidReferenceArea = errors.New("reference square area must be a positive finite number")

// UnexpectedError wraps any other failure of a single analysis run,
// including recovered panics and numeric failures while measuring leaves.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// ErrorRecord is the structured error output. It is returned instead of,
// never alongside, a Record.
type ErrorRecord struct {
	Error string `json:"error"`
}

// NewErrorRecord converts err into its structured form.
func NewErrorRecord(err error) ErrorRecord {
	return ErrorRecord{Error: err.Error()}
}

// IsClientError reports whether err was caused by the caller's input (an
// undecodable image or a bad reference area) rather than by the analysis.
func IsClientError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) || errors.Is(err, ErrInvalidReferenceArea)
}
