package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/itinera/itinera/pkg/journeys"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/itinera/itinera/pkg/util"
	"github.com/liip/sheriff"
)

const queryDateTimeLayout = "20060102T150405"

func JourneysRouter(router fiber.Router, engine *journeys.Engine) {
	router.Get("/", func(c *fiber.Ctx) error {
		request, err := journeyRequestFromQuery(c)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return runJourneys(c, engine, request)
	})

	router.Post("/", func(c *fiber.Ctx) error {
		var request tmdf.JourneyRequest
		if err := c.BodyParser(&request); err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		if len(request.DateTimes) == 0 {
			request.DateTimes = []time.Time{time.Now()}
		}

		return runJourneys(c, engine, &request)
	})
}

func runJourneys(c *fiber.Ctx, engine *journeys.Engine, request *tmdf.JourneyRequest) error {
	response := engine.Run(c.Context(), request)

	if response.Error != nil && len(response.Journeys) == 0 {
		if response.Error.ID == "invalid_request" {
			c.SendStatus(fiber.StatusBadRequest)
		} else if response.Error.ID == "technical_failure" {
			c.SendStatus(fiber.StatusServiceUnavailable)
		} else {
			c.SendStatus(fiber.StatusNotFound)
		}
	}

	groups := []string{"basic", "detailed"}
	if request.Debug {
		groups = append(groups, "internal")
	}

	responseReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, response)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sorry something has gone very wrong",
		})
	}

	return c.JSON(responseReduced)
}

func journeyRequestFromQuery(c *fiber.Ctx) (*tmdf.JourneyRequest, error) {
	request := &tmdf.JourneyRequest{
		Origin:      c.Query("from"),
		Destination: c.Query("to"),
		Clockwise:   c.Query("datetime_represents", "departure") == "departure",

		MaxNbJourneys: c.QueryInt("max_nb_journeys", 0),
		MaxTransfers:  c.QueryInt("max_transfers", 0),
		Wheelchair:    c.QueryBool("wheelchair", false),
		TypeFilter:    tmdf.JourneyType(c.Query("type")),
		Debug:         c.QueryBool("debug", false),
	}

	dateTime := time.Now()
	if dateTimeString := c.Query("datetime"); dateTimeString != "" {
		var err error
		dateTime, err = time.Parse(queryDateTimeLayout, dateTimeString)
		if err != nil {
			dateTime, err = time.Parse(time.RFC3339, dateTimeString)
		}
		if err != nil {
			return nil, err
		}
	}
	request.DateTimes = []time.Time{dateTime}

	if minNbJourneys := c.QueryInt("min_nb_journeys", -1); minNbJourneys >= 0 {
		request.MinNbJourneys = &minNbJourneys
	}

	request.OriginModes = parseModes(c.Query("first_section_mode", "walking"))
	request.DestinationModes = parseModes(c.Query("last_section_mode", "walking"))

	if forbidden := c.Query("forbidden_uris"); forbidden != "" {
		request.ForbiddenURIs = util.RemoveDuplicateStrings(strings.Split(forbidden, ","), nil)
	}

	return request, nil
}

func parseModes(value string) []tmdf.Mode {
	var modes []tmdf.Mode

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			modes = append(modes, tmdf.Mode(part))
		}
	}

	return modes
}
