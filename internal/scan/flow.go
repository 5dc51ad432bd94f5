// Package scan implements the bin scanning flow: camera acquisition, a
// simulated QR decode and the resulting point credit.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is a node of the scan state machine.
type State string

const (
	StateIdle            State = "idle"
	StateCameraRequested State = "camera_requested"
	StateCameraDenied    State = "camera_denied"
	StateScanning        State = "scanning"
	StateProcessing      State = "processing"
	StateResult          State = "result"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid scan transition")
	// ErrCameraDenied is returned by cameras whose permission was refused.
	ErrCameraDenied = errors.New("camera permission denied")
)

// ResultHandler receives a decoded outcome. It is where points get credited.
type ResultHandler func(ctx context.Context, outcome Outcome) error

// Options configures a Flow.
type Options struct {
	Resolver        Resolver
	OnResult        ResultHandler
	OnReturn        func()
	ProcessingDelay time.Duration
	ResultDelay     time.Duration
	Logger          *zap.Logger
}

// Flow drives one member's scan session. All methods are safe for concurrent use.
type Flow struct {
	mu     sync.Mutex
	state  State
	stream Stream
	last   *Outcome
	err    error

	// cycle is bumped on every restart or close so stale timers can tell
	// they no longer own the flow.
	cycle  uint64
	cancel context.CancelFunc

	resolver        Resolver
	onResult        ResultHandler
	onReturn        func()
	processingDelay time.Duration
	resultDelay     time.Duration
	logger          *zap.Logger
}

// NewFlow builds an idle flow.
func NewFlow(opts Options) *Flow {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		state:           StateIdle,
		resolver:        opts.Resolver,
		onResult:        opts.OnResult,
		onReturn:        opts.OnReturn,
		processingDelay: opts.ProcessingDelay,
		resultDelay:     opts.ResultDelay,
		logger:          logger,
	}
}

// Snapshot is a point-in-time view of a flow.
type Snapshot struct {
	State   State
	Outcome *Outcome
	Err     error
}

// Snapshot returns the current state, the last outcome and the last handler error.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := Snapshot{State: f.state, Err: f.err}
	if f.last != nil {
		o := *f.last
		snap.Outcome = &o
	}
	return snap
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// StartCamera acquires the camera. It is valid from Idle, and from
// CameraDenied where it acts as the retry.
func (f *Flow) StartCamera(ctx context.Context, camera Camera) error {
	f.mu.Lock()
	if f.state != StateIdle && f.state != StateCameraDenied {
		defer f.mu.Unlock()
		return f.invalid("start camera")
	}
	f.state = StateCameraRequested
	f.err = nil
	cycle := f.cycle
	f.mu.Unlock()

	stream, err := camera.Acquire(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cycle != cycle || f.state != StateCameraRequested {
		// closed while the permission prompt was open
		if stream != nil {
			stream.Release()
		}
		return fmt.Errorf("%w: flow closed during camera request", ErrInvalidTransition)
	}
	if err != nil {
		f.state = StateCameraDenied
		f.logger.Info("camera unavailable", zap.Error(err))
		if errors.Is(err, ErrCameraDenied) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrCameraDenied, err)
	}
	f.stream = stream
	f.state = StateScanning
	return nil
}

// StopCamera releases the camera while scanning and returns to Idle.
func (f *Flow) StopCamera() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateScanning {
		return f.invalid("stop camera")
	}
	f.releaseLocked()
	f.state = StateIdle
	return nil
}

// Capture starts decoding the code in front of the camera. The flow moves to
// Processing and resolves asynchronously after the processing delay.
func (f *Flow) Capture() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateScanning {
		return f.invalid("capture")
	}
	f.state = StateProcessing
	f.err = nil
	f.cycle++
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go f.process(ctx, f.cycle)
	return nil
}

// Close cancels pending timers, releases the camera and resets to Idle.
// Closing an idle flow is a no-op.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cycle++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.releaseLocked()
	f.state = StateIdle
}

func (f *Flow) process(ctx context.Context, cycle uint64) {
	if !wait(ctx, f.processingDelay) {
		return
	}

	outcome, err := f.resolver.Resolve(ctx)

	f.mu.Lock()
	if f.cycle != cycle || f.state != StateProcessing {
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.state = StateScanning
		f.err = err
		f.mu.Unlock()
		f.logger.Warn("qr decode failed", zap.Error(err))
		return
	}
	f.releaseLocked()
	f.state = StateResult
	f.last = &outcome
	f.mu.Unlock()

	if f.onResult != nil {
		// the credit must land even if the member navigates away right now
		if err := f.onResult(context.WithoutCancel(ctx), outcome); err != nil {
			f.logger.Error("scan result handler failed", zap.Error(err), zap.String("qr_data", outcome.QRData))
			f.mu.Lock()
			if f.cycle == cycle {
				f.err = err
			}
			f.mu.Unlock()
		}
	}

	if !wait(ctx, f.resultDelay) {
		return
	}

	f.mu.Lock()
	if f.cycle != cycle || f.state != StateResult {
		f.mu.Unlock()
		return
	}
	f.state = StateIdle
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.mu.Unlock()

	if f.onReturn != nil {
		f.onReturn()
	}
}

func (f *Flow) releaseLocked() {
	if f.stream != nil {
		f.stream.Release()
		f.stream = nil
	}
}

func (f *Flow) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, f.state)
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
