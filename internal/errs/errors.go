package errs

import "errors"

// Error taxonomy shared by the editor core. Call sites wrap these with
// fmt.Errorf("%w: ...") and callers match them with errors.Is.
var (
	// ErrValidation reports empty or missing required user input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a reference to a preset, scene, route or item that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRoute reports an attempt to create a route whose name is taken.
	ErrDuplicateRoute = errors.New("route already exists")
	// ErrAssetLoad reports a single layer image that could not be loaded.
	// The compositor recovers from it locally.
	ErrAssetLoad = errors.New("asset load failed")
	// ErrCorruptState reports persisted project data that could not be used.
	ErrCorruptState = errors.New("corrupt persisted state")
)
