package journeys

import (
	"context"
	"time"

	"github.com/itinera/itinera/pkg/fanout"
	"github.com/itinera/itinera/pkg/realtimeproxy"
	"github.com/itinera/itinera/pkg/tmdf"
)

const realtimeLookupWindow = 2 * time.Hour

// enrichRealtime overlays realtime departure predictions onto the public
// transport sections of the final journey set. Each distinct boarding route
// point is looked up once, proxies are tried in registration order and the
// first one able to answer wins. Sections with no realtime available keep
// their base schedule untouched
func (e *Engine) enrichRealtime(ctx context.Context, response *tmdf.ResponseSet) {
	if len(e.realtimeProxies) == 0 {
		return
	}

	sectionsByRoutePoint := map[tmdf.RoutePoint][]*tmdf.Section{}
	for _, journey := range response.Journeys {
		for _, section := range journey.Sections {
			if section.Type != tmdf.SectionTypePublicTransport {
				continue
			}

			routePoint := section.RoutePoint()
			if routePoint.StopPointRef == "" {
				continue
			}

			sectionsByRoutePoint[routePoint] = append(sectionsByRoutePoint[routePoint], section)
		}
	}

	if len(sectionsByRoutePoint) == 0 {
		return
	}

	now := time.Now()

	batch := fanout.NewBatch[tmdf.RoutePoint, []tmdf.RealTimePassage](e.fanoutConfig)

	tasks := map[tmdf.RoutePoint]func(context.Context) ([]tmdf.RealTimePassage, error){}
	for routePoint, sections := range sectionsByRoutePoint {
		routePoint := routePoint
		query := realtimeproxy.PassageQuery{
			Count:           len(sections),
			FromDateTime:    earliestDeparture(sections),
			CurrentDateTime: now,
			Duration:        realtimeLookupWindow,
		}

		tasks[routePoint] = func(callCtx context.Context) ([]tmdf.RealTimePassage, error) {
			for _, proxy := range e.realtimeProxies {
				passages := proxy.GetNextRealtimePassages(callCtx, routePoint, query)
				if passages != nil {
					return passages, nil
				}
			}

			return nil, nil
		}
	}

	for _, result := range batch.Execute(ctx, tasks) {
		if result.Err != nil || result.Value == nil {
			continue
		}

		for _, section := range sectionsByRoutePoint[result.Key] {
			applyPassages(section, result.Value)
		}
	}
}

func earliestDeparture(sections []*tmdf.Section) time.Time {
	earliest := sections[0].DepartureTime
	for _, section := range sections[1:] {
		if section.DepartureTime.Before(earliest) {
			earliest = section.DepartureTime
		}
	}

	return earliest
}

// applyPassages writes the earliest realtime passage at or after the
// scheduled departure into the boarding stop time of the section. Vendors do
// not all return passages in chronological order
func applyPassages(section *tmdf.Section, passages []tmdf.RealTimePassage) {
	if len(section.StopTimes) == 0 {
		return
	}

	boarding := section.StopTimes[0]

	var match *tmdf.RealTimePassage
	for index, passage := range passages {
		if passage.DateTime.Before(boarding.DepartureTime) {
			continue
		}

		if match == nil || passage.DateTime.Before(match.DateTime) {
			match = &passages[index]
		}
	}

	if match == nil {
		return
	}

	boarding.PredictedDepartureTime = match.DateTime
	boarding.Predicted = match.IsRealTime
	if match.DirectionName != "" {
		boarding.DirectionName = match.DirectionName
	}
}
