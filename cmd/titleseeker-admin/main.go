package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mantonx/titleseeker/internal/admin"
	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/database"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/modules/sheetsmodule"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "titleseeker-admin",
		Usage: "maintenance commands for the Title Seeker catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"TITLESEEKER_CONFIG_PATH"},
				Value:   "./titleseeker.yaml",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			exportCommand(),
			importCommand(),
			sheetsAuthCommand(),
			{
				Name:  "calculate-movie-rating",
				Usage: "recalculate the average rating of every movie",
				Action: func(c *cli.Context) error {
					n, err := ratings.RecalculateAll(c.Context, database.GetDB())
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "ratings recalculated for %d movies\n", n)
					return nil
				},
			},
			{
				Name:  "create-visual-profiles",
				Usage: "create owner visual profiles for movies without one",
				Action: func(c *cli.Context) error {
					n, err := admin.CreateVisualProfiles(c.Context, database.GetDB())
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d visual profiles created\n", n)
					return nil
				},
			},
			{
				Name:  "delete-actors",
				Usage: "delete every actor with translations and movie links",
				Action: func(c *cli.Context) error {
					n, err := admin.DeleteActors(c.Context, database.GetDB())
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d actors deleted\n", n)
					return nil
				},
			},
			{
				Name:  "update-filters-with-uuid",
				Usage: "assign uuids to genres, subgenres, specifications, keywords and action times",
				Action: func(c *cli.Context) error {
					n, err := admin.UpdateFiltersWithUUID(c.Context, database.GetDB())
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d filters updated\n", n)
					return nil
				},
			},
			{
				Name:  "create-owner",
				Usage: "create the owner account from the admin configuration",
				Action: func(c *cli.Context) error {
					user, created, err := admin.CreateOwner(c.Context, database.GetDB(), config.Get().Admin)
					if err != nil {
						return err
					}
					if !created {
						fmt.Fprintf(c.App.Writer, "user with e-mail %s already exists\n", user.Email)
						return nil
					}
					fmt.Fprintf(c.App.Writer, "owner %s created\n", user.Email)
					return nil
				},
			},
		},
	}
}

// setup loads the configuration and opens the migrated database
func setup(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	if err := config.Load(path); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := config.Get()
	logger.Configure(logger.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})

	if err := database.Initialize(cfg.Database); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	return database.Migrate(database.GetDB())
}

func sheetsService(c *cli.Context, needClient bool) (*sheetsmodule.Service, error) {
	cfg := config.Get()
	var client sheetsmodule.Client
	if needClient {
		if !cfg.Sheets.Enabled {
			return nil, sheetsmodule.ErrDisabled
		}
		gc, err := sheetsmodule.NewGoogleClient(c.Context, cfg.Sheets)
		if err != nil {
			return nil, err
		}
		client = gc
	}
	return sheetsmodule.NewService(database.GetDB(), client, cfg.App.DataDir), nil
}

func entityNames(c *cli.Context) ([]string, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected one entity: all or one of %s", strings.Join(sheetsmodule.Entities(), ", "))
	}
	if name := c.Args().First(); name != "all" {
		return []string{name}, nil
	}
	return sheetsmodule.Entities(), nil
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "copy an entity from the spreadsheet into the database",
		ArgsUsage: "<entity|all>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "from-json", Usage: "read the JSON dump in the data directory instead of the spreadsheet"},
			&cli.IntFlag{Name: "limit", Usage: "with --from-json, write only the first N records"},
		},
		Action: func(c *cli.Context) error {
			names, err := entityNames(c)
			if err != nil {
				return err
			}
			fromJSON := c.Bool("from-json")
			svc, err := sheetsService(c, !fromJSON)
			if err != nil {
				return err
			}
			for _, name := range names {
				var res sheetsmodule.Result
				if fromJSON {
					res, err = svc.ExportFromJSON(c.Context, name, c.Int("limit"))
				} else {
					res, err = svc.Export(c.Context, name)
				}
				if err != nil {
					return fmt.Errorf("export %s: %w", name, err)
				}
				fmt.Fprintf(c.App.Writer, "%s: %d read, %d written\n", res.Entity, res.Read, res.Written)
			}
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "append the newest database row of an entity to its sheet",
		ArgsUsage: "<entity>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected one of %s", strings.Join(sheetsmodule.Entities(), ", "))
			}
			svc, err := sheetsService(c, true)
			if err != nil {
				return err
			}
			return svc.AppendLatest(c.Context, c.Args().First())
		},
	}
}

func sheetsAuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "sheets-auth",
		Usage: "authorize spreadsheet access and store the OAuth2 token",
		Action: func(c *cli.Context) error {
			cfg := config.Get().Sheets
			if err := sheetsmodule.Authorize(c.Context, cfg, os.Stdin, c.App.Writer); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "token saved to %s\n", cfg.TokenFile)
			return nil
		},
	}
}
