// Package siriproxy polls a SIRI StopMonitoring endpoint for realtime
// passages.
package siriproxy

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/itinera/itinera/pkg/realtimeproxy"
	"github.com/itinera/itinera/pkg/tmdf"
)

const siriDateTimeFormat = "2006-01-02T15:04:05-07:00"

type Client struct {
	name      string
	address   string
	requestor string

	httpClient *http.Client
}

func NewClient(name string, address string, requestor string) *Client {
	return &Client{
		name:       name,
		address:    address,
		requestor:  requestor,
		httpClient: &http.Client{},
	}
}

func (c *Client) Name() string {
	return c.name
}

type stopMonitoringResponse struct {
	ServiceDelivery struct {
		ResponseTimestamp string

		StopMonitoringDelivery struct {
			Status string

			MonitoredStopVisit []struct {
				MonitoredVehicleJourney struct {
					LineRef       string
					DirectionName string
					DirectionRef  string

					MonitoredCall struct {
						AimedDepartureTime    string
						ExpectedDepartureTime string
					}
				}
			}
		}
	}
}

func (c *Client) NextPassages(ctx context.Context, routePoint tmdf.RoutePoint, query realtimeproxy.PassageQuery) ([]tmdf.RealTimePassage, error) {
	requestBody := c.buildRequest(routePoint, query)

	request, err := http.NewRequestWithContext(ctx, "POST", c.address, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "text/xml; charset=utf-8")

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

	var monitoringResponse stopMonitoringResponse
	if err := xml.Unmarshal(body, &monitoringResponse); err != nil {
		return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
	}

	delivery := monitoringResponse.ServiceDelivery.StopMonitoringDelivery

	// A well formed delivery with no visits means the source confirms there
	// is nothing upcoming
	passages := []tmdf.RealTimePassage{}

	for _, visit := range delivery.MonitoredStopVisit {
		vehicleJourney := visit.MonitoredVehicleJourney

		if routePoint.RouteRef != "" && vehicleJourney.LineRef != "" && vehicleJourney.LineRef != routePoint.RouteRef {
			continue
		}

		departureTimeString := vehicleJourney.MonitoredCall.ExpectedDepartureTime
		isRealTime := true
		if departureTimeString == "" {
			departureTimeString = vehicleJourney.MonitoredCall.AimedDepartureTime
			isRealTime = false
		}
		if departureTimeString == "" {
			continue
		}

		departureTime, err := time.Parse(siriDateTimeFormat, departureTimeString)
		if err != nil {
			return nil, &tmdf.MalformedResponseError{Adapter: c.name, Reason: err.Error()}
		}

		if departureTime.Before(query.FromDateTime) {
			continue
		}
		if query.Duration > 0 && departureTime.After(query.FromDateTime.Add(query.Duration)) {
			continue
		}

		passages = append(passages, tmdf.RealTimePassage{
			DateTime:      departureTime,
			DirectionName: vehicleJourney.DirectionName,
			DirectionURI:  vehicleJourney.DirectionRef,
			IsRealTime:    isRealTime,
		})

		if query.Count > 0 && len(passages) >= query.Count {
			break
		}
	}

	return passages, nil
}

func (c *Client) buildRequest(routePoint tmdf.RoutePoint, query realtimeproxy.PassageQuery) []byte {
	var buffer bytes.Buffer

	buffer.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buffer.WriteString(`<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">`)
	buffer.WriteString(`<ServiceRequest>`)
	buffer.WriteString(fmt.Sprintf(`<RequestTimestamp>%s</RequestTimestamp>`, query.CurrentDateTime.Format(siriDateTimeFormat)))
	buffer.WriteString(fmt.Sprintf(`<RequestorRef>%s</RequestorRef>`, c.requestor))
	buffer.WriteString(`<StopMonitoringRequest version="2.0">`)
	buffer.WriteString(fmt.Sprintf(`<MonitoringRef>%s</MonitoringRef>`, routePoint.StopPointRef))
	if routePoint.RouteRef != "" {
		buffer.WriteString(fmt.Sprintf(`<LineRef>%s</LineRef>`, routePoint.RouteRef))
	}
	if query.Count > 0 {
		buffer.WriteString(fmt.Sprintf(`<MaximumStopVisits>%d</MaximumStopVisits>`, query.Count))
	}
	buffer.WriteString(`</StopMonitoringRequest>`)
	buffer.WriteString(`</ServiceRequest>`)
	buffer.WriteString(`</Siri>`)

	return buffer.Bytes()
}
