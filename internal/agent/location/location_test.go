package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"alertaya/internal/model"
)

func TestFormat_LongitudeFirst(t *testing.T) {
	coords := Format(-84.5, 10.0)

	if coords.Longitude() != "-84.5" {
		t.Errorf("longitude = %q, want -84.5", coords.Longitude())
	}
	if coords.Latitude() != "10.0" {
		t.Errorf("latitude = %q, want 10.0", coords.Latitude())
	}
	if coords[0] != "-84.5" || coords[1] != "10.0" {
		t.Errorf("coords = %v, want [-84.5 10.0]", coords)
	}
}

func TestWithTimeout_MapsDeadlineToUnavailable(t *testing.T) {
	slow := Func(func(ctx context.Context) (model.Coordinates, error) {
		<-ctx.Done()
		return model.Coordinates{}, ctx.Err()
	})

	p := WithTimeout(slow, 20*time.Millisecond)
	_, err := p.Current(context.Background())
	if !errors.Is(err, ErrLocationUnavailable) {
		t.Errorf("err = %v, want ErrLocationUnavailable", err)
	}
}

func TestWithTimeout_PassesThroughPermissionDenied(t *testing.T) {
	denied := Func(func(ctx context.Context) (model.Coordinates, error) {
		return model.Coordinates{}, ErrPermissionDenied
	})

	p := WithTimeout(denied, time.Second)
	_, err := p.Current(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}
