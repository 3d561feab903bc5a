// Command initdb resets the expenses schema and loads the sample data.
package main

import (
	"flag"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

func main() {
	drop := flag.Bool("drop", true, "roll back and re-apply every migration, deleting existing data")
	seed := flag.Bool("seed", true, "insert the sample expenses")
	flag.Usage = cli.Usage("initdb", "[-drop=false] [-seed=false]")
	flag.Parse()

	cfg, logger := cli.LoadConfig((*config.Config).Validate)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo := cli.OpenStore(ctx, logger, cfg.DatabaseURL)
	defer repo.Close()

	if *drop {
		if err := storage.ResetSchema(repo.Dialect()); err != nil {
			repo.Close()
			cli.Fatal(logger, "Failed to reset schema", err)
		}
		logger.WithComponent(log.ComponentStorage).Info("Schema reset", "driver", repo.Dialect().Name)
	}

	if !*seed {
		return
	}
	created, err := storage.Seed(ctx, repo, storage.SampleExpenses())
	if err != nil {
		repo.Close()
		cli.Fatal(logger, "Failed to seed expenses", err)
	}
	for _, e := range created {
		logger.Info("Seeded expense", log.NewFields().WithExpense(e.ID, e.Title, e.Amount.Cents).ToSlice()...)
	}
	logger.Info("Database initialized", "expenses", len(created))
}
