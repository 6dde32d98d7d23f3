package tmdf

type TicketCost struct {
	Value    float64 `groups:"basic"`
	Currency string  `groups:"basic"`
}

// Ticket is a fare product attached to one or more sections of the reply it
// came back in. Tickets only survive a merge while at least one journey still
// references them
type Ticket struct {
	PrimaryIdentifier string `groups:"basic"`
	Name              string `groups:"basic"`

	Cost TicketCost `groups:"basic"`

	SectionRefs []string `groups:"internal" json:",omitempty"`
}
