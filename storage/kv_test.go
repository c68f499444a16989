package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/landform/landform/storage"
	"github.com/landform/landform/storage/kvbackend"
	"github.com/pkg/errors"
)

func testKV() *storage.KV {
	return &storage.KV{Backend: &kvbackend.Memory{}}
}

func TestKV_records(t *testing.T) {
	ctx := context.Background()
	kv := testKV()

	rec := storage.Record{
		Address: "aws_subnet.private[0]",
		Type:    "aws_subnet",
		Hash:    "df74e7cd51b216b4",
		Def:     json.RawMessage(`{"cidr_block":"10.0.1.0/24","id":"subnet-123"}`),
		Deps:    []string{"aws_vpc.main"},
	}
	if err := kv.PutRecord(ctx, "two-tier", rec); err != nil {
		t.Fatalf("PutRecord() error = %v", err)
	}

	got, err := kv.GetRecord(ctx, "two-tier", "aws_subnet.private[0]")
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if diff := cmp.Diff(got, rec); diff != "" {
		t.Errorf("GetRecord() (-got, +want)\n%s", diff)
	}

	list, err := kv.ListRecords(ctx, "two-tier")
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListRecords() returned %d records, want 1", len(list))
	}
	if diff := cmp.Diff(list["aws_subnet.private[0]"], rec); diff != "" {
		t.Errorf("ListRecords() (-got, +want)\n%s", diff)
	}

	// Records are scoped to the project.
	other, err := kv.ListRecords(ctx, "other")
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("ListRecords() for other project returned %d records, want 0", len(other))
	}

	if err := kv.DeleteRecord(ctx, "two-tier", "aws_subnet.private[0]"); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	_, err = kv.GetRecord(ctx, "two-tier", "aws_subnet.private[0]")
	if errors.Cause(err) != storage.ErrNotFound {
		t.Errorf("GetRecord() after delete = %v, want ErrNotFound", err)
	}
}

func TestKV_deleteMissingRecord(t *testing.T) {
	kv := testKV()
	err := kv.DeleteRecord(context.Background(), "two-tier", "aws_vpc.gone")
	if errors.Cause(err) != storage.ErrNotFound {
		t.Errorf("DeleteRecord() = %v, want ErrNotFound", err)
	}
}

func TestKV_order(t *testing.T) {
	ctx := context.Background()
	kv := testKV()

	// No order recorded yet.
	got, err := kv.GetOrder(ctx, "two-tier")
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetOrder() = %v, want nil", got)
	}

	order := []string{"aws_vpc.main", "aws_subnet.private[0]", "aws_subnet.private[1]"}
	if err := kv.PutOrder(ctx, "two-tier", order); err != nil {
		t.Fatalf("PutOrder() error = %v", err)
	}
	got, err = kv.GetOrder(ctx, "two-tier")
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if diff := cmp.Diff(got, order); diff != "" {
		t.Errorf("GetOrder() (-got, +want)\n%s", diff)
	}
}
