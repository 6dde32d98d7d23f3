// Package valhallarouter speaks the Valhalla JSON API as a street network
// vendor.
package valhallarouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/itinera/itinera/pkg/streetnetwork"
	"github.com/itinera/itinera/pkg/tmdf"
)

type Client struct {
	name    string
	address string

	httpClient *http.Client
}

func NewClient(name string, address string) *Client {
	return &Client{
		name:       name,
		address:    address,
		httpClient: &http.Client{},
	}
}

func (c *Client) Name() string {
	return c.name
}

type location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type routeRequest struct {
	Locations []location `json:"locations"`
	Costing   string     `json:"costing"`
}

type routeResponse struct {
	Trip struct {
		Status int `json:"status"`

		Legs []struct {
			Maneuvers []struct {
				Instruction string  `json:"instruction"`
				Length      float64 `json:"length"`
				Time        float64 `json:"time"`
			} `json:"maneuvers"`
		} `json:"legs"`

		Summary struct {
			Time   float64 `json:"time"`
			Length float64 `json:"length"`
		} `json:"summary"`
	} `json:"trip"`
}

type matrixRequest struct {
	Sources []location `json:"sources"`
	Targets []location `json:"targets"`
	Costing string     `json:"costing"`
}

type matrixResponse struct {
	SourcesToTargets [][]struct {
		Time      *float64 `json:"time"`
		Distance  *float64 `json:"distance"`
		FromIndex int      `json:"from_index"`
		ToIndex   int      `json:"to_index"`
	} `json:"sources_to_targets"`
}

func (c *Client) Route(ctx context.Context, mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place) (*streetnetwork.RouteResult, error) {
	request := routeRequest{
		Locations: []location{placeLocation(origin), placeLocation(destination)},
		Costing:   valhallaCosting(mode),
	}

	body, err := c.post(ctx, "/route", request)
	if err != nil {
		return nil, err
	}

	var response routeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
	}

	if len(response.Trip.Legs) == 0 {
		return nil, tmdf.ErrNoSolution
	}

	var path []tmdf.PathItem
	for _, leg := range response.Trip.Legs {
		for _, maneuver := range leg.Maneuvers {
			path = append(path, tmdf.PathItem{
				Name:     maneuver.Instruction,
				Length:   maneuver.Length * 1000,
				Duration: int64(maneuver.Time),
			})
		}
	}

	return &streetnetwork.RouteResult{
		Duration: time.Duration(response.Trip.Summary.Time * float64(time.Second)),
		Distance: response.Trip.Summary.Length * 1000,
		Path:     path,
	}, nil
}

func (c *Client) Matrix(ctx context.Context, mode tmdf.Mode, origins []tmdf.Place, destinations []tmdf.Place) ([][]streetnetwork.MatrixCell, error) {
	request := matrixRequest{
		Costing: valhallaCosting(mode),
	}
	for _, origin := range origins {
		request.Sources = append(request.Sources, placeLocation(origin))
	}
	for _, destination := range destinations {
		request.Targets = append(request.Targets, placeLocation(destination))
	}

	body, err := c.post(ctx, "/sources_to_targets", request)
	if err != nil {
		return nil, err
	}

	var response matrixResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
	}

	cells := make([][]streetnetwork.MatrixCell, len(response.SourcesToTargets))
	for rowIndex, row := range response.SourcesToTargets {
		cells[rowIndex] = make([]streetnetwork.MatrixCell, len(row))

		for columnIndex, entry := range row {
			if entry.Time == nil {
				cells[rowIndex][columnIndex] = streetnetwork.MatrixCell{Status: streetnetwork.MatrixStatusUnreached}
			} else {
				cells[rowIndex][columnIndex] = streetnetwork.MatrixCell{
					Status:   streetnetwork.MatrixStatusReached,
					Duration: time.Duration(*entry.Time * float64(time.Second)),
				}
			}
		}
	}

	return cells, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, "POST", c.address+path, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	// Valhalla reports an unroutable pair as a client error
	if response.StatusCode == http.StatusBadRequest {
		return nil, tmdf.ErrNoSolution
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", c.name, response.StatusCode)
	}

	return io.ReadAll(response.Body)
}

func placeLocation(place tmdf.Place) location {
	return location{
		Lat: place.Location.Latitude(),
		Lon: place.Location.Longitude(),
	}
}

func valhallaCosting(mode tmdf.Mode) string {
	switch mode {
	case tmdf.ModeWalking:
		return "pedestrian"
	case tmdf.ModeBike, tmdf.ModeBss:
		return "bicycle"
	case tmdf.ModeTaxi:
		return "taxi"
	default:
		return "auto"
	}
}
