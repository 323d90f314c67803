package worker

import (
	"context"
	"errors"
	"testing"

	"finsight/internal/amqp"
	"finsight/internal/core"
	"finsight/internal/export/memory"
)

type fakeReportStore struct {
	reports map[string]core.Report
}

func (s *fakeReportStore) Create(_ context.Context, r core.Report) (core.Report, error) {
	s.reports[r.ID] = r
	return r, nil
}

func (s *fakeReportStore) FindRecent(context.Context, string, int) ([]core.Report, error) {
	return nil, nil
}

func (s *fakeReportStore) FindByID(_ context.Context, userID, reportID string) (core.Report, error) {
	r, ok := s.reports[reportID]
	if !ok || r.UserID != userID {
		return core.Report{}, core.NewNotFoundError("report", reportID)
	}
	return r, nil
}

type failingWriter struct{ err error }

func (w failingWriter) Append(context.Context, core.Report) (string, error) {
	return "", w.err
}

func TestHandleReportGenerated(t *testing.T) {
	store := &fakeReportStore{reports: map[string]core.Report{
		"r1": {ID: "r1", UserID: "user-1", Type: core.ReportSpending, Status: core.ReportCompleted},
	}}
	sink := memory.New()
	w := NewExportWorker(store, sink, nil)

	msg := amqp.NewReportGeneratedMessage("r1", "user-1", "spending")
	if err := w.HandleReportGenerated(context.Background(), msg); err != nil {
		t.Fatalf("HandleReportGenerated: %v", err)
	}

	items := sink.Items()
	if len(items) != 1 || items[0].ID != "r1" {
		t.Errorf("exported = %v, want r1", items)
	}
}

func TestHandleReportGenerated_UnknownReport(t *testing.T) {
	store := &fakeReportStore{reports: map[string]core.Report{}}
	w := NewExportWorker(store, memory.New(), nil)

	msg := amqp.NewReportGeneratedMessage("ghost", "user-1", "spending")
	err := w.HandleReportGenerated(context.Background(), msg)
	if err == nil {
		t.Fatal("expected an error so the message requeues")
	}
	if !core.IsNotFound(err) {
		t.Errorf("err = %v, want wrapped not found", err)
	}
}

func TestHandleReportGenerated_WriterFailure(t *testing.T) {
	store := &fakeReportStore{reports: map[string]core.Report{
		"r1": {ID: "r1", UserID: "user-1", Type: core.ReportSpending, Status: core.ReportCompleted},
	}}
	writeErr := errors.New("spreadsheet unavailable")
	w := NewExportWorker(store, failingWriter{err: writeErr}, nil)

	msg := amqp.NewReportGeneratedMessage("r1", "user-1", "spending")
	err := w.HandleReportGenerated(context.Background(), msg)
	if !errors.Is(err, writeErr) {
		t.Errorf("err = %v, want wrapped writer failure", err)
	}
}
