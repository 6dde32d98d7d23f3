package tmdf

import "fmt"

// Place is a resolved origin or destination - either a raw coordinate or a
// named object (stop point, address, point of interest) from the places store.
type Place struct {
	PrimaryIdentifier string            `groups:"basic" bson:",omitempty"`
	OtherIdentifiers  map[string]string `groups:"detailed" json:",omitempty" bson:",omitempty"`

	Name string `groups:"basic" bson:",omitempty"`
	Type string `groups:"basic" bson:",omitempty"`

	Location Location `groups:"basic"`
}

func NewCoordinatePlace(lon float64, lat float64) Place {
	return Place{
		PrimaryIdentifier: fmt.Sprintf("%f;%f", lon, lat),
		Type:              "coordinate",
		Location:          NewPointLocation(lon, lat),
	}
}

// Code returns the vendor specific identifier for this place registered under
// the given tag, falling back to the primary identifier when none is set
func (p *Place) Code(tag string) string {
	if code, ok := p.OtherIdentifiers[tag]; ok {
		return code
	}

	return p.PrimaryIdentifier
}
