package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/core"
)

type reportStore struct{ r *SQLiteRepository }

// Reports returns the repository as an analytics.ReportStore.
func (r *SQLiteRepository) Reports() analytics.ReportStore {
	return reportStore{r}
}

func (s reportStore) Create(ctx context.Context, report core.Report) (core.Report, error) {
	return s.r.CreateReport(ctx, report)
}

func (s reportStore) FindRecent(ctx context.Context, userID string, limit int) ([]core.Report, error) {
	return s.r.FindRecentReports(ctx, userID, limit)
}

func (s reportStore) FindByID(ctx context.Context, userID, reportID string) (core.Report, error) {
	return s.r.FindReportByID(ctx, userID, reportID)
}

// CreateReport inserts a new report record. Records are never updated in
// place; re-generation creates a fresh row.
func (r *SQLiteRepository) CreateReport(ctx context.Context, report core.Report) (core.Report, error) {
	if err := report.Validate(); err != nil {
		return core.Report{}, err
	}

	data, err := json.Marshal(report.Data)
	if err != nil {
		return core.Report{}, fmt.Errorf("marshal report data: %w", err)
	}
	metadata, err := json.Marshal(report.Metadata)
	if err != nil {
		return core.Report{}, fmt.Errorf("marshal report metadata: %w", err)
	}

	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO reports (id, user_id, name, type, period, start_date, end_date,
		                      status, format, data, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.UserID, report.Name, string(report.Type), report.Period,
		report.StartDate.UTC().Format(timeLayout), report.EndDate.UTC().Format(timeLayout),
		string(report.Status), report.Format, string(data), string(metadata),
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return core.Report{}, fmt.Errorf("insert report: %w", err)
	}

	slog.InfoContext(ctx, "Report persisted",
		"report_id", report.ID,
		"user_id", report.UserID,
		"report_type", string(report.Type))

	return report, nil
}

// FindRecentReports returns the user's newest reports, most recent first.
func (r *SQLiteRepository) FindRecentReports(ctx context.Context, userID string, limit int) ([]core.Report, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, period, start_date, end_date,
		        status, format, data, metadata, created_at, updated_at
		 FROM reports WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []core.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// FindReportByID loads one report. Unknown ids and reports owned by a
// different user surface as distinct error types internally but must render
// identically to API callers.
func (r *SQLiteRepository) FindReportByID(ctx context.Context, userID, reportID string) (core.Report, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, period, start_date, end_date,
		        status, format, data, metadata, created_at, updated_at
		 FROM reports WHERE id = ?`, reportID)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, core.NewNotFoundError("report", reportID)
	}
	if err != nil {
		return core.Report{}, err
	}
	if report.UserID != userID {
		return core.Report{}, core.NewAuthorizationError("report", reportID)
	}
	return report, nil
}

func scanReport(row rowScanner) (core.Report, error) {
	var (
		report                       core.Report
		reportType, status           string
		start, end, created, updated string
		data, metadata               string
	)
	err := row.Scan(&report.ID, &report.UserID, &report.Name, &reportType, &report.Period,
		&start, &end, &status, &report.Format, &data, &metadata, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, err
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("scan report: %w", err)
	}

	report.Type = core.ReportType(reportType)
	report.Status = core.ReportStatus(status)
	if report.StartDate, err = time.Parse(timeLayout, start); err != nil {
		return core.Report{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	if report.EndDate, err = time.Parse(timeLayout, end); err != nil {
		return core.Report{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	if report.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return core.Report{}, fmt.Errorf("parse created at %q: %w", created, err)
	}
	if report.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return core.Report{}, fmt.Errorf("parse updated at %q: %w", updated, err)
	}

	var payload any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return core.Report{}, fmt.Errorf("unmarshal report data: %w", err)
	}
	report.Data = payload
	if err := json.Unmarshal([]byte(metadata), &report.Metadata); err != nil {
		return core.Report{}, fmt.Errorf("unmarshal report metadata: %w", err)
	}
	return report, nil
}
