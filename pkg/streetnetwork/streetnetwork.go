package streetnetwork

import (
	"context"
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
)

// TimeExtremity is the anchored end of a path search window - the datetime
// is either the wanted departure or the wanted arrival
type TimeExtremity struct {
	DateTime  time.Time
	Departure bool
}

type MatrixStatus string

const (
	MatrixStatusReached   MatrixStatus = "reached"
	MatrixStatusUnreached MatrixStatus = "unreached"
	MatrixStatusUnknown   MatrixStatus = "unknown"
)

type MatrixCell struct {
	Status   MatrixStatus
	Duration time.Duration
}

// Matrix is the origins x destinations travel time table returned by a
// routing matrix call
type Matrix struct {
	Origins      []tmdf.Place
	Destinations []tmdf.Place

	Cells [][]MatrixCell
}

func (m *Matrix) Cell(originIndex int, destinationIndex int) MatrixCell {
	return m.Cells[originIndex][destinationIndex]
}

// RouteResult is the raw vendor answer for a single path, before it is
// assembled into a journey
type RouteResult struct {
	Duration time.Duration
	Distance float64

	Path []tmdf.PathItem
}

// VendorClient is the uniform wire level contract every street network vendor
// adapter satisfies regardless of its own request and response shapes.
// A vendor reports "no route" with tmdf.ErrNoSolution, which is a legitimate
// outcome and never counts against the circuit breaker
type VendorClient interface {
	Name() string

	Route(ctx context.Context, mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place) (*RouteResult, error)
	Matrix(ctx context.Context, mode tmdf.Mode, origins []tmdf.Place, destinations []tmdf.Place) ([][]MatrixCell, error)
}
