package export

import (
	"context"

	"finsight/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter appends a generated report's summary row to an external
	// destination and returns a reference to the written row.
	ReportWriter interface {
		Append(ctx context.Context, r core.Report) (rowRef string, err error)
	}
)
