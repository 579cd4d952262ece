// Package location abstracts device geolocation behind a single call that
// yields coordinates or a typed failure.
package location

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"alertaya/internal/model"
)

var (
	// ErrPermissionDenied means the user declined the location permission.
	ErrPermissionDenied = errors.New("location: permission denied")

	// ErrLocationUnavailable means no fix could be obtained in time.
	ErrLocationUnavailable = errors.New("location: unavailable")
)

// DefaultTimeout bounds a single fix acquisition.
const DefaultTimeout = 30 * time.Second

// Provider produces the device's current position. Implementations request
// the permission themselves and must not retry internally; the caller
// decides whether to re-trigger.
type Provider interface {
	// Current returns [longitude, latitude]. Longitude comes first; the
	// backend contract depends on that ordering.
	Current(ctx context.Context) (model.Coordinates, error)
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context) (model.Coordinates, error)

func (f Func) Current(ctx context.Context) (model.Coordinates, error) {
	return f(ctx)
}

// WithTimeout wraps a provider so each Current call is bounded by d.
// A deadline hit maps to ErrLocationUnavailable.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		d = DefaultTimeout
	}
	return Func(func(ctx context.Context) (model.Coordinates, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		coords, err := p.Current(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return model.Coordinates{}, ErrLocationUnavailable
			}
			return model.Coordinates{}, err
		}
		return coords, nil
	})
}

// Format converts a numeric position into the wire coordinates. Longitude
// first. Whole degrees keep a trailing ".0" so the values stay recognizable
// as decimals on the wire.
func Format(longitude, latitude float64) model.Coordinates {
	return model.Coordinates{formatDegrees(longitude), formatDegrees(latitude)}
}

func formatDegrees(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
