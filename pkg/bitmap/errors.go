package bitmap

import (
	"github.com/pkg/errors"
)

var (
	ErrDimensionOverflow = errors.New("bitmap: dimension overflow")
	ErrInvalidBuffer     = errors.New("bitmap: pixel buffer size mismatch")
	ErrIoFailure         = errors.New("bitmap: write failed")
)

// ioFailure keeps both the sink error and ErrIoFailure reachable through
// errors.Is.
type ioFailure struct {
	err error
}

func (e *ioFailure) Error() string {
	return ErrIoFailure.Error() + ": " + e.err.Error()
}

func (e *ioFailure) Unwrap() error {
	return e.err
}

func (e *ioFailure) Is(target error) bool {
	return target == ErrIoFailure
}

func wrapIO(err error) error {
	if err == nil {
		return nil
	}
	return &ioFailure{err: err}
}
