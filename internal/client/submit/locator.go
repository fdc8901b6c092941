package submit

import (
	"context"
	"errors"
	"time"

	"github.com/divya01062005/Ayurtrace/internal/client"
)

// Location is a captured GPS fix in floating-point degrees.
type Location struct {
	Latitude  float64
	Longitude float64
	// Accuracy is the reported radius in meters, zero if unknown.
	Accuracy float64
}

// Locator acquires the current position. Implementations must respect
// ctx; acquisition is the only operation in the system with an explicit
// timeout.
type Locator interface {
	Current(ctx context.Context) (Location, error)
}

// Capture acquires a fix within the given timeout, mapping a deadline
// hit to client.ErrLocationTimeout so callers can tell a timeout from
// a denied capture.
func Capture(ctx context.Context, loc Locator, timeout time.Duration) (Location, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	fix, err := loc.Current(cctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Location{}, client.ErrLocationTimeout
		}
		return Location{}, err
	}
	return fix, nil
}

// FixedLocator returns a preset position; used by the CLI (where the
// operator types coordinates) and by tests.
type FixedLocator struct {
	Fix Location
	Err error
}

func (f *FixedLocator) Current(ctx context.Context) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	if f.Err != nil {
		return Location{}, f.Err
	}
	return f.Fix, nil
}
