package tmdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *JourneyRequest {
	return &JourneyRequest{
		Origin:      "2.3730;48.8446",
		Destination: "2.2920;48.8580",
		DateTimes:   []time.Time{time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)},
		Clockwise:   true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*JourneyRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(*JourneyRequest) {}},
		{name: "missing origin", mutate: func(r *JourneyRequest) { r.Origin = "" }, wantErr: true},
		{name: "missing datetimes", mutate: func(r *JourneyRequest) { r.DateTimes = nil }, wantErr: true},
		{name: "unknown mode", mutate: func(r *JourneyRequest) { r.OriginModes = []Mode{"hoverboard"} }, wantErr: true},
		{name: "negative min journeys", mutate: func(r *JourneyRequest) {
			negative := -1
			r.MinNbJourneys = &negative
		}, wantErr: true},
		{name: "isochrone without destination", mutate: func(r *JourneyRequest) { r.Destination = "" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := validRequest()
			test.mutate(request)

			err := request.Validate()
			if test.wantErr {
				var invalid *InvalidRequestError
				require.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	request := validRequest()
	request.ForbiddenURIs = []string{"line:1"}

	cloned := request.Clone()
	cloned.DateTimes[0] = cloned.DateTimes[0].Add(time.Hour)
	cloned.ForbiddenURIs[0] = "line:2"

	assert.Equal(t, time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC), request.DateTimes[0])
	assert.Equal(t, "line:1", request.ForbiddenURIs[0])
}

func TestParseCoordinate(t *testing.T) {
	place, ok := ParseCoordinate("2.3730;48.8446")
	require.True(t, ok)
	assert.Equal(t, 2.3730, place.Location.Longitude())
	assert.Equal(t, 48.8446, place.Location.Latitude())

	_, ok = ParseCoordinate("stop_area:ABC")
	assert.False(t, ok)

	_, ok = ParseCoordinate("x;y")
	assert.False(t, ok)
}

func TestIsIsochrone(t *testing.T) {
	request := validRequest()
	assert.False(t, request.IsIsochrone())

	request.Destination = ""
	assert.True(t, request.IsIsochrone())
}
