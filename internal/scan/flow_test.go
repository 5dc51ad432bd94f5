package scan

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/owaste/rewards-service/internal/domain"
)

var testWasteTypes = []domain.WasteType{
	{ID: "plastic", Name: "Plastic Bottles", PointValue: 50},
	{ID: "paper", Name: "Paper Waste", PointValue: 25},
	{ID: "metal", Name: "Metal Cans", PointValue: 75},
	{ID: "glass", Name: "Glass Bottles", PointValue: 60},
}

func fixedResolver(idx int) *RandomResolver {
	return NewRandomResolver(testWasteTypes).WithPicker(func(int) int { return idx })
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestFlowHappyPath(t *testing.T) {
	credited := make(chan Outcome, 1)
	returned := make(chan struct{})
	var released atomic.Int32

	flow := NewFlow(Options{
		Resolver: fixedResolver(2),
		OnResult: func(_ context.Context, o Outcome) error {
			credited <- o
			return nil
		},
		OnReturn: func() { close(returned) },
	})

	cam := ClientCamera{Granted: true, OnRelease: func() { released.Add(1) }}
	if err := flow.StartCamera(context.Background(), cam); err != nil {
		t.Fatalf("StartCamera: %v", err)
	}
	if flow.State() != StateScanning {
		t.Fatalf("state = %s, want scanning", flow.State())
	}
	if err := flow.Capture(); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	var outcome Outcome
	select {
	case outcome = <-credited:
	case <-time.After(2 * time.Second):
		t.Fatal("no credit")
	}
	if outcome.WasteType.ID != "metal" || outcome.Points != 75 {
		t.Errorf("outcome = %+v", outcome)
	}

	waitFor(t, returned, "auto return")
	if flow.State() != StateIdle {
		t.Errorf("state = %s, want idle", flow.State())
	}
	if released.Load() != 1 {
		t.Errorf("camera released %d times, want 1", released.Load())
	}
	if snap := flow.Snapshot(); snap.Outcome == nil || snap.Outcome.Points != 75 {
		t.Errorf("snapshot outcome = %+v", snap.Outcome)
	}
}

func TestFlowResultStateHoldsUntilDelay(t *testing.T) {
	credited := make(chan struct{})
	flow := NewFlow(Options{
		Resolver:    fixedResolver(0),
		OnResult:    func(context.Context, Outcome) error { close(credited); return nil },
		ResultDelay: time.Hour,
	})
	t.Cleanup(flow.Close)

	if err := flow.StartCamera(context.Background(), ClientCamera{Granted: true}); err != nil {
		t.Fatal(err)
	}
	if err := flow.Capture(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, credited, "credit")
	if flow.State() != StateResult {
		t.Fatalf("state = %s, want result", flow.State())
	}
	if err := flow.StartCamera(context.Background(), ClientCamera{Granted: true}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("StartCamera during result: %v", err)
	}
}

func TestFlowCameraDeniedAndRetry(t *testing.T) {
	flow := NewFlow(Options{Resolver: fixedResolver(0)})

	err := flow.StartCamera(context.Background(), ClientCamera{Granted: false})
	if !errors.Is(err, ErrCameraDenied) {
		t.Fatalf("expected ErrCameraDenied, got %v", err)
	}
	if flow.State() != StateCameraDenied {
		t.Fatalf("state = %s, want camera_denied", flow.State())
	}
	if err := flow.Capture(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("capture while denied: %v", err)
	}

	if err := flow.StartCamera(context.Background(), ClientCamera{Granted: true}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if flow.State() != StateScanning {
		t.Errorf("state = %s, want scanning", flow.State())
	}
}

func TestFlowCloseDuringProcessingSkipsCredit(t *testing.T) {
	var calls atomic.Int32
	var released atomic.Int32
	flow := NewFlow(Options{
		Resolver:        fixedResolver(0),
		OnResult:        func(context.Context, Outcome) error { calls.Add(1); return nil },
		ProcessingDelay: 50 * time.Millisecond,
	})

	cam := ClientCamera{Granted: true, OnRelease: func() { released.Add(1) }}
	if err := flow.StartCamera(context.Background(), cam); err != nil {
		t.Fatal(err)
	}
	if err := flow.Capture(); err != nil {
		t.Fatal(err)
	}
	if flow.State() != StateProcessing {
		t.Fatalf("state = %s, want processing", flow.State())
	}
	flow.Close()

	time.Sleep(150 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("result handler ran %d times after close", calls.Load())
	}
	if flow.State() != StateIdle {
		t.Errorf("state = %s, want idle", flow.State())
	}
	if released.Load() != 1 {
		t.Errorf("camera released %d times, want 1", released.Load())
	}
}

func TestFlowStopCamera(t *testing.T) {
	var released atomic.Int32
	flow := NewFlow(Options{Resolver: fixedResolver(0)})
	if err := flow.StopCamera(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("stop while idle: %v", err)
	}
	cam := ClientCamera{Granted: true, OnRelease: func() { released.Add(1) }}
	if err := flow.StartCamera(context.Background(), cam); err != nil {
		t.Fatal(err)
	}
	if err := flow.StopCamera(); err != nil {
		t.Fatalf("StopCamera: %v", err)
	}
	if flow.State() != StateIdle || released.Load() != 1 {
		t.Errorf("state = %s, released = %d", flow.State(), released.Load())
	}
}

func TestFlowHandlerErrorIsRecorded(t *testing.T) {
	returned := make(chan struct{})
	flow := NewFlow(Options{
		Resolver: fixedResolver(1),
		OnResult: func(context.Context, Outcome) error { return errors.New("ledger down") },
		OnReturn: func() { close(returned) },
	})
	if err := flow.StartCamera(context.Background(), ClientCamera{Granted: true}); err != nil {
		t.Fatal(err)
	}
	if err := flow.Capture(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, returned, "auto return")
	if snap := flow.Snapshot(); snap.Err == nil {
		t.Error("expected handler error in snapshot")
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context) (Outcome, error) {
	return Outcome{}, errors.New("unreadable code")
}

func TestFlowDecodeFailureKeepsScanning(t *testing.T) {
	flow := NewFlow(Options{Resolver: failingResolver{}})
	t.Cleanup(flow.Close)
	if err := flow.StartCamera(context.Background(), ClientCamera{Granted: true}); err != nil {
		t.Fatal(err)
	}
	if err := flow.Capture(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for flow.State() == StateProcessing && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	snap := flow.Snapshot()
	if snap.State != StateScanning || snap.Err == nil {
		t.Fatalf("snapshot = %+v, want scanning with error", snap)
	}
}

func TestRandomResolverValuesMatchTable(t *testing.T) {
	r := NewRandomResolver(testWasteTypes)
	for i := 0; i < 200; i++ {
		o, err := r.Resolve(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		var want int
		for _, wt := range testWasteTypes {
			if wt.ID == o.WasteType.ID {
				want = wt.PointValue
			}
		}
		if want == 0 || o.Points != want {
			t.Fatalf("outcome %+v does not match table value %d", o, want)
		}
	}
}

func TestRandomResolverCoversAllTypes(t *testing.T) {
	seen := map[string]bool{}
	for i := range testWasteTypes {
		o, _ := fixedResolver(i).Resolve(context.Background())
		seen[o.WasteType.ID] = true
	}
	if len(seen) != len(testWasteTypes) {
		t.Errorf("saw %d types", len(seen))
	}
}
