package scan

import (
	"context"
	"sync/atomic"
)

// FacingEnvironment asks for the rear camera.
const FacingEnvironment = "environment"

// Camera is the device the flow reads codes through.
type Camera interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is an acquired video stream. Release must be idempotent.
type Stream interface {
	Release()
}

// ClientCamera is a camera living on the member's phone. The client reports
// the permission outcome and the server tracks the stream's lifetime.
type ClientCamera struct {
	Granted    bool
	FacingMode string
	// OnRelease, when set, is called once the stream is released.
	OnRelease func()
}

// Acquire returns ErrCameraDenied when the client refused access.
func (c ClientCamera) Acquire(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.Granted {
		return nil, ErrCameraDenied
	}
	facing := c.FacingMode
	if facing == "" {
		facing = FacingEnvironment
	}
	return &clientStream{facing: facing, onRelease: c.OnRelease}, nil
}

type clientStream struct {
	facing    string
	released  atomic.Bool
	onRelease func()
}

func (s *clientStream) Release() {
	if s.released.Swap(true) {
		return
	}
	if s.onRelease != nil {
		s.onRelease()
	}
}
