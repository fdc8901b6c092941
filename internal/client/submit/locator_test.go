package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/divya01062005/Ayurtrace/internal/client"
)

// stalledLocator blocks until its context is cancelled.
type stalledLocator struct{}

func (stalledLocator) Current(ctx context.Context) (Location, error) {
	<-ctx.Done()
	return Location{}, ctx.Err()
}

func TestCapture_Success(t *testing.T) {
	loc := &FixedLocator{Fix: Location{Latitude: 12.9716, Longitude: 77.5946, Accuracy: 8}}

	fix, err := Capture(context.Background(), loc, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fix != loc.Fix {
		t.Errorf("fix = %+v, want %+v", fix, loc.Fix)
	}
}

func TestCapture_Timeout(t *testing.T) {
	_, err := Capture(context.Background(), stalledLocator{}, 10*time.Millisecond)
	if !errors.Is(err, client.ErrLocationTimeout) {
		t.Errorf("expected ErrLocationTimeout, got %v", err)
	}
}

func TestCapture_DeniedIsNotTimeout(t *testing.T) {
	denied := errors.New("location permission denied")
	loc := &FixedLocator{Err: denied}

	_, err := Capture(context.Background(), loc, time.Second)
	if !errors.Is(err, denied) {
		t.Errorf("expected the denial error, got %v", err)
	}
	if errors.Is(err, client.ErrLocationTimeout) {
		t.Error("a denied capture must not be reported as a timeout")
	}
}
