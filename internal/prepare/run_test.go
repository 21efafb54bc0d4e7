package prepare

import (
	"context"
	"path/filepath"
	"testing"

	"resourcemap/internal/config"
	"resourcemap/internal/resource"
	"resourcemap/internal/sheet"
	"resourcemap/pkg/geocode"
)

func runConfig(dir string) *config.Config {
	return &config.Config{
		RunGeocoding: true,
		RunRecat:     true,
		Sheet: config.SheetConfig{
			InputPath:   filepath.Join(dir, "resources.xlsx"),
			AddressCol:  "Address",
			CategoryCol: "Cateogry of Help",
			OutputPath:  filepath.Join(dir, "resources_geocoded.xlsx"),
		},
		Geocode: config.GeocodeConfig{
			CachePath: filepath.Join(dir, "geocache.csv"),
		},
	}
}

func TestRunMissingInputIsFatal(t *testing.T) {
	cfg := runConfig(t.TempDir())
	err := Run(context.Background(), cfg, Deps{
		Resolver: geocode.NewResolver(&stubGeocoder{}, geocode.NewCache(), 1),
		Cache:    geocode.NewCache(),
	})
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := runConfig(dir)

	if err := table().Write(cfg.Sheet.InputPath); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cache := geocode.NewCache()
	stub := &stubGeocoder{result: geocode.Result{Lat: 39.2904, Lng: -76.6122, Found: true}}
	deps := Deps{Resolver: geocode.NewResolver(stub, cache, 3), Cache: cache}

	if err := Run(context.Background(), cfg, deps); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := sheet.Read(cfg.Sheet.OutputPath, "")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	catIdx := out.ColumnIndex("Cateogry of Help")
	if got := out.Get(0, catIdx); got != resource.CategoryHealth {
		t.Errorf("output category = %q; want %q", got, resource.CategoryHealth)
	}
	if out.ColumnIndex("Cateogry of Help (Original)") < 0 {
		t.Error("backup column missing from output")
	}
	latIdx := out.ColumnIndex("Latitude")
	if got := out.Get(0, latIdx); got != "39.2904" {
		t.Errorf("output latitude = %q", got)
	}

	// The resolved address must be persisted for the next run.
	reloaded, err := geocode.Load(cfg.Geocode.CachePath)
	if err != nil {
		t.Fatalf("reload cache: %v", err)
	}
	if _, ok := reloaded.Get("123 Main St, Baltimore, MD"); !ok {
		t.Error("live lookup not persisted to the cache")
	}
}

func TestRunWithStepsDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := runConfig(dir)
	cfg.RunGeocoding = false
	cfg.RunRecat = false

	if err := table().Write(cfg.Sheet.InputPath); err != nil {
		t.Fatal(err)
	}

	stub := &stubGeocoder{}
	if err := Run(context.Background(), cfg, Deps{
		Resolver: geocode.NewResolver(stub, geocode.NewCache(), 1),
		Cache:    geocode.NewCache(),
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stub.calls != 0 {
		t.Errorf("geocoder called with geocoding disabled")
	}
	out, err := sheet.Read(cfg.Sheet.OutputPath, "")
	if err != nil {
		t.Fatal(err)
	}
	catIdx := out.ColumnIndex("Cateogry of Help")
	if got := out.Get(0, catIdx); got != "free health clinic" {
		t.Errorf("category rewritten with recat disabled: %q", got)
	}
}
