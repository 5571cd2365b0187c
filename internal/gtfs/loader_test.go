package gtfs

import (
	"context"
	"errors"
	"testing"
)

func TestLoad(t *testing.T) {
	ds, err := Load(context.Background(), "testdata/routes.csv", "testdata/stops.csv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := ds.RouteCount(); got != 6 {
		t.Errorf("RouteCount() = %d, want 6", got)
	}
	if got := ds.StopCount(); got != 3 {
		t.Errorf("StopCount() = %d, want 3", got)
	}
	if got := ds.SkippedRows(); got != 0 {
		t.Errorf("SkippedRows() = %d, want 0", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	tests := []struct {
		name       string
		routesPath string
		stopsPath  string
	}{
		{"missing routes", "testdata/nope.csv", "testdata/stops.csv"},
		{"missing stops", "testdata/routes.csv", "testdata/nope.csv"},
		{"missing both", "testdata/nope.csv", "testdata/nope.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Load(context.Background(), tt.routesPath, tt.stopsPath)
			if !errors.Is(err, ErrDataUnavailable) {
				t.Errorf("err = %v, want ErrDataUnavailable", err)
			}
			if ds != nil {
				t.Error("dataset should be nil on failure, not partially loaded")
			}
		})
	}
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	ds, err := Load(context.Background(), "testdata/routes_mixed.csv", "testdata/stops.csv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := ds.RouteCount(); got != 2 {
		t.Errorf("RouteCount() = %d, want 2", got)
	}
	if got := ds.SkippedRows(); got != 4 {
		t.Errorf("SkippedRows() = %d, want 4", got)
	}
	if _, ok := ds.Find("3"); ok {
		t.Error("zero-length route should have been rejected")
	}
	if _, ok := ds.Find("4"); ok {
		t.Error("negative-length route should have been rejected")
	}
}

func TestFind(t *testing.T) {
	ds, err := Load(context.Background(), "testdata/routes.csv", "testdata/stops.csv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	r, ok := ds.Find("7")
	if !ok {
		t.Fatal("Find(7) should succeed")
	}
	if r.FullName != "Mainline" {
		t.Errorf("FullName = %q, want %q", r.FullName, "Mainline")
	}
	if r.Length != 21.5 {
		t.Errorf("Length = %v, want 21.5", r.Length)
	}

	if _, ok := ds.Find("99"); ok {
		t.Error("Find(99) should fail")
	}
}

func TestOptions(t *testing.T) {
	ds, err := Load(context.Background(), "testdata/routes.csv", "testdata/stops.csv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts := ds.Options()
	if len(opts) != 4 {
		t.Fatalf("len(Options()) = %d, want 4 distinct routes", len(opts))
	}

	// Numeric ordering: 10 sorts after 8, not after 1.
	want := []string{"1", "7", "8", "10"}
	for i, id := range want {
		if opts[i].Route != id {
			t.Errorf("Options()[%d].Route = %q, want %q", i, opts[i].Route, id)
		}
	}
}

func TestLessRouteID(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"1", "1", false},
		{"7A", "7B", true},
		{"iXpress", "7A", false},
	}
	for _, tt := range tests {
		if got := lessRouteID(tt.a, tt.b); got != tt.want {
			t.Errorf("lessRouteID(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
