package journeys

import (
	"context"
	"fmt"
	"time"

	"github.com/itinera/itinera/pkg/fanout"
	"github.com/itinera/itinera/pkg/ridesharing"
	"github.com/itinera/itinera/pkg/tmdf"
)

const ridesharingWindowLength = time.Hour

// ridesharingJourneys fans out offer lookups over every configured vendor and
// converts the offers into complete tagged journeys. Offers only enrich the
// response, a vendor failure never affects the rest of the request
func (e *Engine) ridesharingJourneys(ctx context.Context, request *tmdf.JourneyRequest, origin tmdf.Place, destination tmdf.Place) ([]*tmdf.Journey, []tmdf.Ticket) {
	if len(e.ridesharing) == 0 {
		return nil, nil
	}

	wantsRidesharing := false
	for _, mode := range request.OriginModes {
		if mode == tmdf.ModeRidesharing {
			wantsRidesharing = true
		}
	}

	if !wantsRidesharing {
		return nil, nil
	}

	requestedDateTime := request.RequestedDateTime()
	window := ridesharing.OfferWindow{
		Start: requestedDateTime,
		End:   requestedDateTime.Add(ridesharingWindowLength),
	}
	if !request.Clockwise {
		window.Start = requestedDateTime.Add(-ridesharingWindowLength)
		window.End = requestedDateTime
	}

	batch := fanout.NewBatch[string, []ridesharing.Offer](e.fanoutConfig)

	tasks := map[string]func(context.Context) ([]ridesharing.Offer, error){}
	for _, service := range e.ridesharing {
		service := service
		tasks[service.Name()] = func(callCtx context.Context) ([]ridesharing.Offer, error) {
			return service.Offers(callCtx, origin, destination, window), nil
		}
	}

	var journeys []*tmdf.Journey
	var tickets []tmdf.Ticket

	for _, result := range batch.Execute(ctx, tasks) {
		for _, offer := range result.Value {
			journey, ticket := offerJourney(offer, origin, destination)

			journeys = append(journeys, journey)
			if ticket != nil {
				tickets = append(tickets, *ticket)
			}
		}
	}

	return journeys, tickets
}

// offerJourney builds the three section journey of a single offer: a crow fly
// walk to the pickup point, the shared ride itself and a crow fly walk from
// the dropoff point
func offerJourney(offer ridesharing.Offer, origin tmdf.Place, destination tmdf.Place) (*tmdf.Journey, *tmdf.Ticket) {
	rideSectionID := fmt.Sprintf("section:ridesharing:%s", offer.PrimaryIdentifier)

	sections := []*tmdf.Section{
		{
			PrimaryIdentifier: fmt.Sprintf("section:ridesharing:%s:approach", offer.PrimaryIdentifier),
			Type:              tmdf.SectionTypeCrowFly,
			Mode:              tmdf.ModeWalking,
			Origin:            origin,
			Destination:       offer.Pickup,
			DepartureTime:     offer.PickupTime,
			ArrivalTime:       offer.PickupTime,
		},
		{
			PrimaryIdentifier: rideSectionID,
			Type:              tmdf.SectionTypeStreetNetwork,
			Mode:              tmdf.ModeRidesharing,
			Origin:            offer.Pickup,
			Destination:       offer.Dropoff,
			DepartureTime:     offer.PickupTime,
			ArrivalTime:       offer.DropoffTime,
			Duration:          offer.DropoffTime.Sub(offer.PickupTime),
			Display: &tmdf.DisplayInformation{
				Network:  offer.Network,
				Headsign: offer.DriverAlias,
			},
		},
		{
			PrimaryIdentifier: fmt.Sprintf("section:ridesharing:%s:egress", offer.PrimaryIdentifier),
			Type:              tmdf.SectionTypeCrowFly,
			Mode:              tmdf.ModeWalking,
			Origin:            offer.Dropoff,
			Destination:       destination,
			DepartureTime:     offer.DropoffTime,
			ArrivalTime:       offer.DropoffTime,
		},
	}

	journey := &tmdf.Journey{
		Sections: sections,
	}
	journey.AddTag(tmdf.JourneyTagRidesharing)
	journey.ComputeAggregates()

	var ticket *tmdf.Ticket
	if offer.Price.Value > 0 {
		ticket = &tmdf.Ticket{
			PrimaryIdentifier: fmt.Sprintf("ticket:ridesharing:%s", offer.PrimaryIdentifier),
			Name:              fmt.Sprintf("Ridesharing %s", offer.Network),
			Cost:              offer.Price,
			SectionRefs:       []string{rideSectionID},
		}

		sections[1].TicketRef = ticket.PrimaryIdentifier
		journey.Fare = tmdf.Fare{
			Found:      true,
			TicketRefs: []string{ticket.PrimaryIdentifier},
		}
	}

	return journey, ticket
}
