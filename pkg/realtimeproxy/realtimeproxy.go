package realtimeproxy

import (
	"context"
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
)

// PassageQuery bounds a next passages lookup
type PassageQuery struct {
	Count int

	FromDateTime    time.Time
	CurrentDateTime time.Time

	Duration time.Duration
	Timezone string
}

// Rounded floors the query window to the given step so near identical queries
// produce the same outbound request and cache key
func (q PassageQuery) Rounded(step time.Duration) PassageQuery {
	if step <= 0 {
		return q
	}

	rounded := q
	rounded.FromDateTime = q.FromDateTime.Truncate(step)
	rounded.CurrentDateTime = q.CurrentDateTime.Truncate(step)

	return rounded
}

// VendorClient is the wire level contract a realtime vendor adapter
// satisfies. A nil passage list means the vendor could not determine
// realtime, an empty one means it confirmed there are no upcoming passages
type VendorClient interface {
	Name() string

	NextPassages(ctx context.Context, routePoint tmdf.RoutePoint, query PassageQuery) ([]tmdf.RealTimePassage, error)
}

// CodeResolver resolves an object's vendor specific identifier registered
// under a configurable code tag
type CodeResolver interface {
	StopCode(ctx context.Context, identifier string, tag string) string
}
