// Package klaxonride speaks a REST/JSON carpool offer API as a ridesharing
// vendor.
package klaxonride

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/itinera/itinera/pkg/ridesharing"
	"github.com/itinera/itinera/pkg/tmdf"
)

type Client struct {
	name    string
	address string
	apiKey  string

	httpClient *http.Client
}

func NewClient(name string, address string, apiKey string) *Client {
	return &Client{
		name:       name,
		address:    address,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

func (c *Client) Name() string {
	return c.name
}

type offerResponse struct {
	Offers []struct {
		ID string `json:"id"`

		Driver struct {
			Alias string `json:"alias"`
		} `json:"driver"`

		Pickup struct {
			Latitude  float64   `json:"latitude"`
			Longitude float64   `json:"longitude"`
			DateTime  time.Time `json:"datetime"`
		} `json:"pickup"`

		Dropoff struct {
			Latitude  float64   `json:"latitude"`
			Longitude float64   `json:"longitude"`
			DateTime  time.Time `json:"datetime"`
		} `json:"dropoff"`

		Price struct {
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		} `json:"price"`

		AvailableSeats int `json:"available_seats"`
	} `json:"offers"`
}

func (c *Client) GetOffers(ctx context.Context, origin tmdf.Place, destination tmdf.Place, window ridesharing.OfferWindow) ([]ridesharing.Offer, error) {
	queryParams := url.Values{}
	queryParams.Set("from", fmt.Sprintf("%f,%f", origin.Location.Latitude(), origin.Location.Longitude()))
	queryParams.Set("to", fmt.Sprintf("%f,%f", destination.Location.Latitude(), destination.Location.Longitude()))
	queryParams.Set("departure_after", window.Start.Format(time.RFC3339))
	queryParams.Set("departure_before", window.End.Format(time.RFC3339))

	request, err := http.NewRequestWithContext(ctx, "GET", c.address+"/v2/offers?"+queryParams.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", c.name, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	var parsed offerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
	}

	var offers []ridesharing.Offer
	for _, rawOffer := range parsed.Offers {
		offers = append(offers, ridesharing.Offer{
			PrimaryIdentifier: rawOffer.ID,
			DriverAlias:       rawOffer.Driver.Alias,
			Pickup:            tmdf.NewCoordinatePlace(rawOffer.Pickup.Longitude, rawOffer.Pickup.Latitude),
			Dropoff:           tmdf.NewCoordinatePlace(rawOffer.Dropoff.Longitude, rawOffer.Dropoff.Latitude),
			PickupTime:        rawOffer.Pickup.DateTime,
			DropoffTime:       rawOffer.Dropoff.DateTime,
			Price: tmdf.TicketCost{
				Value:    rawOffer.Price.Amount,
				Currency: rawOffer.Price.Currency,
			},
			AvailableSeats: rawOffer.AvailableSeats,
		})
	}

	return offers, nil
}
