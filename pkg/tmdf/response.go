package tmdf

import "time"

type PaginationLinks struct {
	First string `groups:"basic" json:",omitempty"`
	Last  string `groups:"basic" json:",omitempty"`
	Prev  string `groups:"basic" json:",omitempty"`
	Next  string `groups:"basic" json:",omitempty"`
}

// ResponseSet is the aggregate handed back to the caller. Ticket referential
// integrity holds at all times: every ticket referenced by a journey's fare
// exists in Tickets, and only referenced tickets are kept
type ResponseSet struct {
	Journeys []*Journey `groups:"basic"`
	Tickets  []Ticket   `groups:"basic" json:",omitempty"`

	Error *ResponseError  `groups:"basic" json:",omitempty"`
	Links PaginationLinks `groups:"basic"`
}

func (r *ResponseSet) TypedJourneyCount() int {
	count := 0

	for _, journey := range r.Journeys {
		if journey.Type != JourneyTypeUntyped {
			count += 1
		}
	}

	return count
}

// PruneTickets drops every ticket no surviving journey references any more
func (r *ResponseSet) PruneTickets() {
	referenced := map[string]bool{}

	for _, journey := range r.Journeys {
		for _, ticketRef := range journey.Fare.TicketRefs {
			referenced[ticketRef] = true
		}
	}

	var kept []Ticket
	for _, ticket := range r.Tickets {
		if referenced[ticket.PrimaryIdentifier] {
			kept = append(kept, ticket)
		}
	}

	r.Tickets = kept
}

// ExtremeDateTimes returns the earliest departure and latest arrival across
// the whole set, used to build the pagination links
func (r *ResponseSet) ExtremeDateTimes() (time.Time, time.Time) {
	var earliestDeparture, latestArrival time.Time

	for _, journey := range r.Journeys {
		if earliestDeparture.IsZero() || journey.DepartureTime.Before(earliestDeparture) {
			earliestDeparture = journey.DepartureTime
		}
		if latestArrival.IsZero() || journey.ArrivalTime.After(latestArrival) {
			latestArrival = journey.ArrivalTime
		}
	}

	return earliestDeparture, latestArrival
}
