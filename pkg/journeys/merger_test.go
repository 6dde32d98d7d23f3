package journeys

import (
	"testing"
	"time"

	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeIdsKeepsRepliesDisjoint(t *testing.T) {
	firstReply := []*tmdf.Journey{
		testJourney(0, 30*time.Minute, testSection{id: "section:1", kind: tmdf.SectionTypePublicTransport, ticketRef: "ticket:1"}),
	}
	firstReply[0].Fare = tmdf.Fare{Found: true, TicketRefs: []string{"ticket:1"}}
	firstTickets := []tmdf.Ticket{
		{PrimaryIdentifier: "ticket:1", SectionRefs: []string{"section:1"}},
	}

	secondReply := []*tmdf.Journey{
		testJourney(10*time.Minute, 30*time.Minute, testSection{id: "section:1", kind: tmdf.SectionTypePublicTransport, ticketRef: "ticket:1"}),
	}
	secondReply[0].Fare = tmdf.Fare{Found: true, TicketRefs: []string{"ticket:1"}}
	secondTickets := []tmdf.Ticket{
		{PrimaryIdentifier: "ticket:1", SectionRefs: []string{"section:1"}},
	}

	ChangeIds(firstReply, firstTickets, 0)
	ChangeIds(secondReply, secondTickets, 1)

	assert.Equal(t, "section:1_0", firstReply[0].Sections[0].PrimaryIdentifier)
	assert.Equal(t, "section:1_1", secondReply[0].Sections[0].PrimaryIdentifier)
	assert.NotEqual(t, firstTickets[0].PrimaryIdentifier, secondTickets[0].PrimaryIdentifier)

	// Internal references follow the rewrite
	assert.Equal(t, "ticket:1_0", firstReply[0].Sections[0].TicketRef)
	assert.Equal(t, []string{"ticket:1_0"}, firstReply[0].Fare.TicketRefs)
	assert.Equal(t, []string{"section:1_0"}, firstTickets[0].SectionRefs)
}

func TestMergeDropsStructuralDuplicates(t *testing.T) {
	total := &tmdf.ResponseSet{}

	Merge(total, []*tmdf.Journey{ptJourney(0, 30*time.Minute)}, nil)
	require.Len(t, total.Journeys, 1)

	// Same departure, arrival, duration and section shape
	Merge(total, []*tmdf.Journey{ptJourney(0, 30*time.Minute)}, nil)
	assert.Len(t, total.Journeys, 1)

	// A shifted alternative survives
	Merge(total, []*tmdf.Journey{ptJourney(10*time.Minute, 30*time.Minute)}, nil)
	assert.Len(t, total.Journeys, 2)
}

func TestMergeCopiesReferencedTickets(t *testing.T) {
	total := &tmdf.ResponseSet{}

	journey := testJourney(0, 30*time.Minute, testSection{id: "section:1", kind: tmdf.SectionTypePublicTransport, ticketRef: "ticket:1"})
	journey.Fare = tmdf.Fare{Found: true, TicketRefs: []string{"ticket:1"}}

	tickets := []tmdf.Ticket{
		{PrimaryIdentifier: "ticket:1", SectionRefs: []string{"section:1"}},
		{PrimaryIdentifier: "ticket:orphan"},
	}

	Merge(total, []*tmdf.Journey{journey}, tickets)

	require.Len(t, total.Tickets, 1)
	assert.Equal(t, "ticket:1", total.Tickets[0].PrimaryIdentifier)
}

func TestMergeEmptyIncomingIsNoOp(t *testing.T) {
	total := &tmdf.ResponseSet{
		Journeys: []*tmdf.Journey{ptJourney(0, 30*time.Minute)},
		Tickets:  []tmdf.Ticket{{PrimaryIdentifier: "ticket:1"}},
	}

	Merge(total, nil, []tmdf.Ticket{{PrimaryIdentifier: "ticket:2"}})

	assert.Len(t, total.Journeys, 1)
	assert.Len(t, total.Tickets, 1)
}

func TestMergeDuplicateDoesNotDuplicateTickets(t *testing.T) {
	total := &tmdf.ResponseSet{}

	buildReply := func() ([]*tmdf.Journey, []tmdf.Ticket) {
		journey := testJourney(0, 30*time.Minute, testSection{id: "section:1", kind: tmdf.SectionTypePublicTransport, ticketRef: "ticket:1"})
		journey.Fare = tmdf.Fare{Found: true, TicketRefs: []string{"ticket:1"}}

		return []*tmdf.Journey{journey}, []tmdf.Ticket{{PrimaryIdentifier: "ticket:1", SectionRefs: []string{"section:1"}}}
	}

	journeys, tickets := buildReply()
	Merge(total, journeys, tickets)

	journeys, tickets = buildReply()
	Merge(total, journeys, tickets)

	assert.Len(t, total.Journeys, 1)
	assert.Len(t, total.Tickets, 1)
}
