package animation

import "errors"

// Error taxonomy shared by the runtime and offline packages. Concrete errors
// wrap one of these; test with errors.Is.
var (
	// ErrValidation reports malformed input data: unsorted keyframes, missing
	// boundary keyframes, bad hierarchy order, duration or track count mismatch.
	ErrValidation = errors.New("validation error")

	// ErrBinding reports a size or joint-count mismatch between the inputs of
	// a job: cache, buffers, animation and skeleton.
	ErrBinding = errors.New("binding error")
)
