// Package worker contains the consumer-side processors driven by AMQP
// events.
package worker

import (
	"context"
	"fmt"

	"finsight/internal/amqp"
	"finsight/internal/analytics"
	"finsight/internal/export"
	"finsight/internal/log"
)

// ExportWorker mirrors generated reports to an external spreadsheet.
type ExportWorker struct {
	reports analytics.ReportStore
	writer  export.ReportWriter
	logger  *log.Logger
}

func NewExportWorker(reports analytics.ReportStore, writer export.ReportWriter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ExportWorker{
		reports: reports,
		writer:  writer,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleReportGenerated processes one report event: load the persisted
// report and append its summary row. A returned error requeues the message.
func (w *ExportWorker) HandleReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error {
	w.logger.InfoContext(ctx, "Processing report event",
		log.FieldReportID, msg.ReportID,
		log.FieldReportType, msg.ReportType)

	report, err := w.reports.FindByID(ctx, msg.UserID, msg.ReportID)
	if err != nil {
		return fmt.Errorf("load report from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, report)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}

	w.logger.InfoContext(ctx, "Report exported",
		log.FieldOperation, log.OpExport,
		log.FieldReportID, report.ID,
		"row_ref", ref)
	return nil
}
