package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, message string) *Spinner {
	s := newSpinnerWithContext(ctx, message)
	s.w = io.Discard
	return s
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(context.Background(), "Computing layered layout...")
	s.w = &buf
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Computing layered layout...") {
		t.Errorf("output %q does not contain the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q does not end by clearing the line", out)
	}
}

func TestSpinnerStop(t *testing.T) {
	tests := []struct {
		name  string
		start bool
		stops int
	}{
		{"started once", true, 1},
		{"started, stopped twice", true, 2},
		{"never started", false, 1},
		{"never started, stopped twice", false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := quietSpinner(context.Background(), "x")
			if tt.start {
				s.Start()
			}
			done := make(chan struct{})
			go func() {
				for range tt.stops {
					s.Stop()
				}
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("Stop blocked")
			}
			if s.ctx.Err() == nil {
				t.Error("context still live after Stop")
			}
		})
	}
}

func TestSpinnerFollowsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := quietSpinner(ctx, "waiting")
	s.Start()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context ended")
	}
	if s.ctx.Err() == nil {
		t.Error("context still live after timeout")
	}
	s.Stop()
}

func TestSpinnerStartTwice(t *testing.T) {
	s := quietSpinner(context.Background(), "x")
	s.Start()
	s.Start()
	s.Stop()
}
