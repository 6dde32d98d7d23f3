// Package osrmrouter speaks the OSRM HTTP API as a street network vendor.
package osrmrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
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

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`

		Legs []struct {
			Steps []struct {
				Name     string  `json:"name"`
				Duration float64 `json:"duration"`
				Distance float64 `json:"distance"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type tableResponse struct {
	Code      string       `json:"code"`
	Durations [][]*float64 `json:"durations"`
}

func (c *Client) Route(ctx context.Context, mode tmdf.Mode, origin tmdf.Place, destination tmdf.Place) (*streetnetwork.RouteResult, error) {
	requestURL := fmt.Sprintf(
		"%s/route/v1/%s/%s?overview=false&steps=true",
		c.address,
		osrmProfile(mode),
		coordinatePath([]tmdf.Place{origin, destination}),
	)

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var response routeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
	}

	if response.Code == "NoRoute" || len(response.Routes) == 0 {
		return nil, tmdf.ErrNoSolution
	}

	if response.Code != "Ok" {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: "unexpected code " + response.Code}
	}

	route := response.Routes[0]

	var path []tmdf.PathItem
	for _, leg := range route.Legs {
		for _, step := range leg.Steps {
			path = append(path, tmdf.PathItem{
				Name:     step.Name,
				Length:   step.Distance,
				Duration: int64(step.Duration),
			})
		}
	}

	return &streetnetwork.RouteResult{
		Duration: time.Duration(route.Duration * float64(time.Second)),
		Distance: route.Distance,
		Path:     path,
	}, nil
}

func (c *Client) Matrix(ctx context.Context, mode tmdf.Mode, origins []tmdf.Place, destinations []tmdf.Place) ([][]streetnetwork.MatrixCell, error) {
	places := append(append([]tmdf.Place{}, origins...), destinations...)

	var sourceIndexes, destinationIndexes []string
	for index := range origins {
		sourceIndexes = append(sourceIndexes, fmt.Sprint(index))
	}
	for index := range destinations {
		destinationIndexes = append(destinationIndexes, fmt.Sprint(len(origins)+index))
	}

	requestURL := fmt.Sprintf(
		"%s/table/v1/%s/%s?sources=%s&destinations=%s",
		c.address,
		osrmProfile(mode),
		coordinatePath(places),
		strings.Join(sourceIndexes, ";"),
		strings.Join(destinationIndexes, ";"),
	)

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var response tableResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
	}

	if response.Code != "Ok" {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: "unexpected code " + response.Code}
	}

	cells := make([][]streetnetwork.MatrixCell, len(response.Durations))
	for rowIndex, row := range response.Durations {
		cells[rowIndex] = make([]streetnetwork.MatrixCell, len(row))

		for columnIndex, duration := range row {
			if duration == nil {
				cells[rowIndex][columnIndex] = streetnetwork.MatrixCell{Status: streetnetwork.MatrixStatusUnreached}
			} else {
				cells[rowIndex][columnIndex] = streetnetwork.MatrixCell{
					Status:   streetnetwork.MatrixStatusReached,
					Duration: time.Duration(*duration * float64(time.Second)),
				}
			}
		}
	}

	return cells, nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", c.name, response.StatusCode)
	}

	return io.ReadAll(response.Body)
}

func coordinatePath(places []tmdf.Place) string {
	var parts []string

	for _, place := range places {
		parts = append(parts, fmt.Sprintf("%f,%f", place.Location.Longitude(), place.Location.Latitude()))
	}

	return strings.Join(parts, ";")
}

func osrmProfile(mode tmdf.Mode) string {
	switch mode {
	case tmdf.ModeWalking:
		return "foot"
	case tmdf.ModeBike, tmdf.ModeBss:
		return "bicycle"
	default:
		return "driving"
	}
}
