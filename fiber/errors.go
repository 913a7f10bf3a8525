package fiber

import "errors"

var (
	// ErrCanceled is the distinguished error raised at a suspension point
	// once a fiber's cancellation flag has been observed set. It is returned,
	// never panicked, following Go's error-return idiom for cancellation
	// that must unwind through ordinary call returns (see PropagateCancel).
	ErrCanceled = errors.New("fiber: canceled")

	// ErrAlreadyTerminated is returned by state-transition attempts made
	// after a fiber has terminated; Terminated is absorbing.
	ErrAlreadyTerminated = errors.New("fiber: already terminated")
)

// IsCanceled reports whether err is, or wraps, ErrCanceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// PropagateCancel is the scoped helper the design notes ask for: a Go
// translation of "exception-driven cancel" for a language without
// exceptions. It returns err unchanged, ErrCanceled included, so callers
// can unconditionally thread it through a return path:
//
//	if err := someOperationWaitForEtc(); err != nil {
//		return fiber.PropagateCancel(err)
//	}
func PropagateCancel(err error) error {
	return err
}
