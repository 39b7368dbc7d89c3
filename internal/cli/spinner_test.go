package cli

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/cellplace/pkg/place"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Placing cells...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	// Repeated stops must not panic on the closed channel.
	s.Stop()
	s.Stop()

	if !s.Cancelled() {
		t.Error("Stop should cancel the spinner context")
	}
}

func TestSpinnerParentCancelled(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s := newSpinnerWithContext(ctx, "Placing cells...")
			s.Start()
			if tt.name == "cancel" {
				cancel()
			}
			defer cancel()

			select {
			case <-s.stopped:
			case <-time.After(time.Second):
				t.Fatal("spinner goroutine did not exit after parent cancellation")
			}
			if !s.Cancelled() {
				t.Error("Cancelled() = false after parent cancellation")
			}
		})
	}
}

func TestSpinnerStopWithStatus(t *testing.T) {
	ok := newSpinner("Rendering svg...")
	ok.Start()
	ok.StopWithSuccess("Rendered svg")

	failed := newSpinner("Placing cells...")
	failed.Start()
	failed.StopWithError("Placement failed")
}

func TestSpinnerTrack(t *testing.T) {
	s := newSpinner("Placing cells...")
	if got := s.line(); got != "Placing cells..." {
		t.Errorf("line() before any round = %q", got)
	}

	s.Start()
	s.Track(place.Round{Number: 1, Name: "gC", Placed: 2, Remaining: 14})
	s.Track(place.Round{Number: 2, Name: "gA", Placed: 3, Remaining: 13})
	s.draw(spinnerFrames[0])
	s.Stop()

	want := "Placing cells... 3/16 gA"
	if got := s.line(); got != want {
		t.Errorf("line() = %q, want %q", got, want)
	}
	if s.width < len(want) {
		t.Errorf("width = %d, want at least %d", s.width, len(want))
	}
}
