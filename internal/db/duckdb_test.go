package db

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAndGetRender(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	r := &Render{
		Name:          "serde",
		Version:       "1.0.0",
		Format:        "markdown",
		ContentHash:   "abc",
		FormatVersion: 39,
		ItemCount:     3,
		Sections:      map[string]int{"Structs": 2, "Traits": 1},
	}
	if err := d.RecordRender(ctx, r); err != nil {
		t.Fatalf("RecordRender: %v", err)
	}

	got, err := d.GetRender(ctx, "serde", "1.0.0", "markdown")
	if err != nil {
		t.Fatalf("GetRender: %v", err)
	}
	if got == nil {
		t.Fatal("GetRender returned nil")
	}
	if got.ContentHash != "abc" || got.ItemCount != 3 || got.Sections["Structs"] != 2 || got.FormatVersion != 39 {
		t.Errorf("got %+v", got)
	}
	if got.RenderedAt.IsZero() {
		t.Error("RenderedAt not set")
	}

	missing, err := d.GetRender(ctx, "serde", "1.0.0", "html")
	if err != nil || missing != nil {
		t.Errorf("GetRender(html) = %+v, %v; want nil, nil", missing, err)
	}
}

func TestRecordRender_Replaces(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	for _, hash := range []string{"first", "second"} {
		if err := d.RecordRender(ctx, &Render{Name: "log", Version: "0.4.0", Format: "markdown", ContentHash: hash}); err != nil {
			t.Fatalf("RecordRender(%s): %v", hash, err)
		}
	}

	list, err := d.ListRenders(ctx)
	if err != nil {
		t.Fatalf("ListRenders: %v", err)
	}
	if len(list) != 1 || list[0].ContentHash != "second" {
		t.Errorf("list = %+v", list)
	}
}

func TestListAndDeleteRenders(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	for _, r := range []Render{
		{Name: "tokio", Version: "1.0.0", Format: "markdown", ContentHash: "a"},
		{Name: "anyhow", Version: "1.0.0", Format: "html", ContentHash: "b"},
		{Name: "anyhow", Version: "1.0.0", Format: "markdown", ContentHash: "c"},
	} {
		if err := d.RecordRender(ctx, &r); err != nil {
			t.Fatalf("RecordRender: %v", err)
		}
	}

	list, err := d.ListRenders(ctx)
	if err != nil {
		t.Fatalf("ListRenders: %v", err)
	}
	var order []string
	for _, r := range list {
		order = append(order, r.Name+"/"+r.Format)
	}
	want := []string{"anyhow/html", "anyhow/markdown", "tokio/markdown"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	n, err := d.DeleteRenders(ctx, "anyhow")
	if err != nil || n != 2 {
		t.Fatalf("DeleteRenders(anyhow) = %d, %v", n, err)
	}
	n, err = d.DeleteRenders(ctx, "")
	if err != nil || n != 1 {
		t.Fatalf("DeleteRenders(all) = %d, %v", n, err)
	}
}
