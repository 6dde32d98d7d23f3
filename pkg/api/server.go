package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/itinera/itinera/pkg/api/routes"
	"github.com/itinera/itinera/pkg/journeys"
)

func SetupServer(listen string, engine *journeys.Engine) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.JourneysRouter(group.Group("/journeys"), engine)

	return webApp.Listen(listen)
}
