package worldmodel

import "errors"

// ModelError implements errors returned by the world model and its
// predictors.
type ModelError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *ModelError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ModelError) Unwrap() error {
	return e.Err
}

var (
	// ErrConfig is wrapped by errors reporting an invalid Config or
	// field schema
	ErrConfig = errors.New("invalid configuration")

	// ErrDevice is wrapped by errors reporting that the model cannot
	// be placed on the requested device
	ErrDevice = errors.New("unsupported device")

	// ErrShape is wrapped by errors reporting inputs whose shapes do
	// not match what a predictor expects
	ErrShape = errors.New("shape mismatch")

	// ErrCapabilityAbsent is wrapped by errors reporting that a
	// prediction head was disabled at construction
	ErrCapabilityAbsent = errors.New("capability absent")

	// ErrInputs is wrapped by errors reporting that a predictor was
	// requested with an input signature it was not built for
	ErrInputs = errors.New("wrong input signature")
)

// IsCapabilityAbsent returns whether err reports that a disabled
// prediction head was requested.
func IsCapabilityAbsent(err error) bool {
	return errors.Is(err, ErrCapabilityAbsent)
}

// IsShape returns whether err reports mismatched input shapes
func IsShape(err error) bool {
	return errors.Is(err, ErrShape)
}
