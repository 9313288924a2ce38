package location

import (
	"context"

	"github.com/okian/lojista/internal/domain/model"
)

// StaticPermissions always answers with the configured status.
type StaticPermissions Status

// RequestForeground implements Permissions.
func (p StaticPermissions) RequestForeground(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Denied, err
	}
	return Status(p), nil
}

// StaticSource always reports the same fix.
type StaticSource model.Coordinates

// CurrentPosition implements PositionSource.
func (s StaticSource) CurrentPosition(ctx context.Context) (model.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return model.Coordinates{}, err
	}
	return model.Coordinates(s), nil
}

// ParseStatus maps "granted" to Granted; anything else is Denied.
func ParseStatus(s string) Status {
	if s == "granted" {
		return Granted
	}
	return Denied
}
