package services

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

// ExpenseSource lists every stored expense.
type ExpenseSource interface {
	All(ctx context.Context) ([]core.Expense, error)
}

// ExportResult summarizes one export run.
type ExportResult struct {
	Summary  core.Summary
	Duration time.Duration
}

// ExportService copies the record store into an external sheet.
type ExportService struct {
	source   ExpenseSource
	exporter sheets.ExpenseExporter
	logger   *log.Logger
}

// NewExportService creates an export service.
func NewExportService(source ExpenseSource, exporter sheets.ExpenseExporter, logger *log.Logger) *ExportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportService{
		source:   source,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentSheets),
	}
}

// Run exports every record, replacing the sheet contents. An empty store
// still clears the sheet.
func (s *ExportService) Run(ctx context.Context) (ExportResult, error) {
	start := time.Now()

	expenses, err := s.source.All(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("load expenses: %w", err)
	}

	if err := s.exporter.Export(ctx, expenses); err != nil {
		return ExportResult{}, fmt.Errorf("export expenses: %w", err)
	}

	result := ExportResult{
		Summary:  core.Summarize(expenses),
		Duration: time.Since(start),
	}
	s.logger.InfoContext(ctx, "Export completed",
		log.FieldOperation, log.OpExport,
		"count", result.Summary.Count,
		"total", result.Summary.TotalString(),
		log.FieldDuration, result.Duration.Milliseconds())
	return result, nil
}
