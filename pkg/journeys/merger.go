package journeys

import (
	"fmt"

	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/rs/zerolog/log"
)

// ChangeIds rewrites every section and ticket identifier in a reply with a
// suffix derived from the response index. Identifiers are only unique within
// one planner reply, so this keeps repeated replies disjoint once merged
func ChangeIds(journeys []*tmdf.Journey, tickets []tmdf.Ticket, responseIndex int) {
	suffix := fmt.Sprintf("_%d", responseIndex)

	for ticketIndex := range tickets {
		ticket := &tickets[ticketIndex]
		ticket.PrimaryIdentifier += suffix

		for refIndex := range ticket.SectionRefs {
			ticket.SectionRefs[refIndex] += suffix
		}
	}

	for _, journey := range journeys {
		for _, section := range journey.Sections {
			section.PrimaryIdentifier += suffix

			if section.TicketRef != "" {
				section.TicketRef += suffix
			}
		}

		for refIndex := range journey.Fare.TicketRefs {
			journey.Fare.TicketRefs[refIndex] += suffix
		}
	}
}

// Merge appends an incoming reply onto the running total, dropping journeys
// that already have a structural match between the sets. Tickets referenced
// by a surviving journey's fare are copied across. An empty incoming set is a
// no-op
func Merge(total *tmdf.ResponseSet, journeys []*tmdf.Journey, tickets []tmdf.Ticket) {
	if len(journeys) == 0 {
		return
	}

	ticketsByID := map[string]tmdf.Ticket{}
	for _, ticket := range tickets {
		ticketsByID[ticket.PrimaryIdentifier] = ticket
	}

	existingTickets := map[string]bool{}
	for _, ticket := range total.Tickets {
		existingTickets[ticket.PrimaryIdentifier] = true
	}

	for _, journey := range journeys {
		duplicate := false

		for _, existing := range total.Journeys {
			if existing.SameAs(journey) {
				duplicate = true
				break
			}
		}

		if duplicate {
			log.Debug().
				Time("departure", journey.DepartureTime).
				Time("arrival", journey.ArrivalTime).
				Msg("Dropping duplicate journey alternative")
			continue
		}

		total.Journeys = append(total.Journeys, journey)

		for _, ticketRef := range journey.Fare.TicketRefs {
			if existingTickets[ticketRef] {
				continue
			}

			if ticket, ok := ticketsByID[ticketRef]; ok {
				total.Tickets = append(total.Tickets, ticket)
				existingTickets[ticketRef] = true
			}
		}
	}
}
