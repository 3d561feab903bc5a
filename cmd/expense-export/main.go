// Command expense-export replaces the contents of a Google Sheet with every
// stored expense.
package main

import (
	"flag"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	memsheet "expensetracker/internal/sheets/memory"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "build the rows without contacting Google")
	flag.Usage = cli.Usage("expense-export", "[-dry-run]")
	flag.Parse()

	validate := (*config.Config).ValidateExport
	if *dryRun {
		validate = (*config.Config).Validate
	}
	cfg, logger := cli.LoadConfig(validate)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo := cli.OpenStore(ctx, logger, cfg.DatabaseURL)
	defer repo.Close()

	var exporter sheets.ExpenseExporter
	if *dryRun {
		mem := memsheet.New()
		exporter = mem
		defer func() {
			for _, row := range mem.Rows() {
				logger.Debug("Export row", "row", row)
			}
		}()
	} else {
		client, err := gsheet.NewFromConfig(ctx, cfg, logger)
		if err != nil {
			repo.Close()
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		exporter = client
	}

	export := services.NewExportService(services.NewExpenseService(repo, nil, logger), exporter, logger)
	result, err := export.Run(ctx)
	if err != nil {
		repo.Close()
		cli.Fatal(logger, "Export failed", err)
	}

	logger.WithComponent(log.ComponentSheets).Info("Export finished",
		log.FieldOperation, log.OpExport,
		"expenses", result.Summary.Count,
		"total", result.Summary.TotalString(),
		"dry_run", *dryRun,
		"duration", result.Duration.String())
}
