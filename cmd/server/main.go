package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mealtrack/backend/config"
	httpDelivery "github.com/mealtrack/backend/internal/delivery/http"
	"github.com/mealtrack/backend/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

var version = "1.0.0"

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return run(ctx, cfg)
}

func bulkImport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := newLogger(cfg.Log)
	app, err := newApplication(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	queries := cmd.StringSlice("query")
	if len(queries) == 0 {
		queries = usecase.PopularFoods
	}
	perQuery := int(cmd.Int("per-query"))
	if perQuery <= 0 {
		perQuery = cfg.Import.BulkPerQuery
	}

	log.WithFields(logrus.Fields{
		"queries":   len(queries),
		"per_query": perQuery,
	}).Info("Starting bulk import from USDA")

	res, err := app.catalog.BulkImport(ctx, queries, perQuery)
	if res != nil {
		log.WithFields(logrus.Fields{
			"queries":        res.Queries,
			"failed_queries": res.FailedQueries,
			"imported":       res.Imported,
			"skipped":        res.Skipped,
			"failed":         res.Failed,
		}).Info("Bulk import finished")
	}
	if err != nil {
		return fmt.Errorf("bulk import: %w", err)
	}
	return nil
}

func issueToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ttl := cmd.Duration("ttl")
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}

	token, err := httpDelivery.IssueToken([]byte(cfg.Auth.JWTSecret), cmd.String("user"), ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, token)
	return err
}

func main() {
	// A missing .env is fine; the environment may already be populated.
	if err := config.LoadEnvFile(); err != nil {
		logrus.WithError(err).Fatal("Failed to read .env file")
	}

	cmd := &cli.Command{
		Name:   "mealtrack",
		Usage:  "Meal tracking backend with nutrition aggregation and a USDA-backed food catalog",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars(config.EnvPrefix + "_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "import",
				Usage:  "Import foods from USDA FoodData Central into the local catalog",
				Action: bulkImport,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "query",
						Usage: "Search term to import (repeatable, defaults to the popular foods list)",
					},
					&cli.IntFlag{
						Name:  "per-query",
						Usage: "Maximum foods to import per search term (defaults to import.bulk_per_query)",
					},
				},
			},
			{
				Name:   "token",
				Usage:  "Issue a signed access token for a user",
				Action: issueToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Usage:    "User id placed in the token subject",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime (defaults to auth.token_ttl)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Error("application error")
		os.Exit(1)
	}
}
