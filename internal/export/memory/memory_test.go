package memory

import (
	"context"
	"testing"

	"finsight/internal/core"
)

func TestStore_Append(t *testing.T) {
	s := New()
	ctx := context.Background()

	report := core.Report{ID: "r1", UserID: "user-1", Type: core.ReportSpending}
	ref, err := s.Append(ctx, report)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	report.ID = "r2"
	ref, err = s.Append(ctx, report)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:2" {
		t.Errorf("ref = %q, want mem:2", ref)
	}

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "r1" || items[1].ID != "r2" {
		t.Errorf("items = %v", items)
	}
}

func TestStore_AppendRejectsInvalid(t *testing.T) {
	s := New()

	_, err := s.Append(context.Background(), core.Report{UserID: "user-1", Type: core.ReportSpending})
	if err == nil {
		t.Fatal("report without an id accepted")
	}
	if len(s.Items()) != 0 {
		t.Error("invalid report stored")
	}
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	s := New()
	_, _ = s.Append(context.Background(), core.Report{ID: "r1", UserID: "user-1", Type: core.ReportSpending})

	items := s.Items()
	items[0].ID = "mutated"

	if s.Items()[0].ID != "r1" {
		t.Error("Items exposed internal state")
	}
}
