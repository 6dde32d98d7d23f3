package streetnetwork

import (
	"context"
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/rs/zerolog/log"
)

// Manager holds every configured street network service and routes each mode
// to the first vendor registered for it
type Manager struct {
	services []*Service
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) RegisterService(service *Service) {
	m.services = append(m.services, service)

	log.Info().
		Str("name", service.Name()).
		Any("modes", service.modes).
		Msg("Registering street network adapter")
}

// ServiceForMode returns the adapter handling the given fallback mode, or nil
// when no vendor covers it
func (m *Manager) ServiceForMode(mode tmdf.Mode) *Service {
	for _, service := range m.services {
		if service.HandlesMode(mode) {
			return service
		}
	}

	return nil
}

// DirectPath dispatches to the adapter for the mode. A mode nobody handles is
// a no solution, not an error
func (m *Manager) DirectPath(ctx context.Context, mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place, extremity TimeExtremity, request *tmdf.JourneyRequest) (*tmdf.Journey, error) {
	service := m.ServiceForMode(mode)
	if service == nil {
		return nil, tmdf.ErrNoSolution
	}

	return service.DirectPath(ctx, mode, origin, destination, extremity, request)
}

// RoutingMatrix dispatches a travel time table request to the adapter for the
// mode
func (m *Manager) RoutingMatrix(ctx context.Context, origins []tmdf.Place, destinations []tmdf.Place, mode tmdf.Mode, maxDuration time.Duration, request *tmdf.JourneyRequest) (*Matrix, error) {
	service := m.ServiceForMode(mode)
	if service == nil {
		return nil, tmdf.ErrNoSolution
	}

	return service.RoutingMatrix(ctx, origins, destinations, mode, maxDuration, request)
}
