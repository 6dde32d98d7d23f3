package api

import (
	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/database"
	"github.com/itinera/itinera/pkg/journeys"
	"github.com/itinera/itinera/pkg/planner"
	"github.com/itinera/itinera/pkg/redisclient"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the journey planning web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Value: "config.yaml",
						Usage: "path to the configuration file",
					},
					&cli.StringFlag{
						Name:  "listen",
						Value: "",
						Usage: "listen target for the web server, overrides the configuration",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					if err := redisclient.Connect(cfg.Redis); err != nil {
						return err
					}
					if err := database.Connect(cfg.Mongo); err != nil {
						return err
					}

					plannerClient := planner.NewHTTPClient(cfg.Planner)
					if err := plannerClient.WaitUntilReady(c.Context); err != nil {
						return err
					}

					engine, err := journeys.NewEngineFromConfig(cfg, plannerClient)
					if err != nil {
						return err
					}

					listen := cfg.Listen
					if c.String("listen") != "" {
						listen = c.String("listen")
					}

					log.Info().Str("listen", listen).Msg("Starting web api server")

					return SetupServer(listen, engine)
				},
			},
		},
	}
}
