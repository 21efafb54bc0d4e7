// Package prepare is the offline pipeline: it geocodes the address column of
// the curated workbook and folds the free-text categories into the fixed
// taxonomy, then writes the processed copy back out.
package prepare

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"resourcemap/internal/config"
	"resourcemap/internal/logger"
	"resourcemap/internal/resource"
	"resourcemap/internal/sheet"
	"resourcemap/pkg/geocode"
)

// Uploader pushes the processed workbook to object storage.
type Uploader interface {
	UploadFile(ctx context.Context, path string) error
}

// Notifier announces that a new processed workbook is available.
type Notifier interface {
	DatasetUpdated(ctx context.Context, path string, updated int) error
}

// Deps carries the pipeline collaborators. Uploader and Notifier are
// optional; nil disables the corresponding step.
type Deps struct {
	Resolver *geocode.Resolver
	Cache    *geocode.Cache
	Uploader Uploader
	Notifier Notifier
}

// Run executes the full preparation pass. It errors on a missing input file
// or an unwritable output; everything in between degrades per step.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	log := logger.Get("prepare")

	if _, err := os.Stat(cfg.Sheet.InputPath); err != nil {
		return fmt.Errorf("input not found: %s", cfg.Sheet.InputPath)
	}

	t, err := sheet.Read(cfg.Sheet.InputPath, cfg.Sheet.SheetName)
	if err != nil {
		return err
	}
	log.Infof("loaded %s (%d rows)", cfg.Sheet.InputPath, len(t.Rows))

	updated := 0
	if cfg.RunGeocoding {
		updated, err = GeocodeTable(ctx, t, cfg.Sheet.AddressCol, deps.Resolver)
		if err != nil {
			return err
		}
		log.Infof("geocoding complete, updated %d rows via live lookup", updated)
	} else {
		log.Info("skipping geocoding (RUN_GEOCODING=false)")
	}

	if cfg.RunRecat {
		if Recategorize(t, cfg.Sheet.CategoryCol) {
			log.Info("recategorization complete, each row now has one of 10 categories")
		} else {
			log.Warnf("column %q not found, skipping recategorization", cfg.Sheet.CategoryCol)
		}
	} else {
		log.Info("skipping recategorization (RUN_RECAT=false)")
	}

	if err := t.Write(cfg.Sheet.OutputPath); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Infof("wrote processed workbook to %s", cfg.Sheet.OutputPath)

	if deps.Cache != nil {
		if err := deps.Cache.Save(cfg.Geocode.CachePath); err != nil {
			return err
		}
		log.Infof("saved %d cache entries to %s", deps.Cache.Len(), cfg.Geocode.CachePath)
	}

	if deps.Uploader != nil {
		if err := deps.Uploader.UploadFile(ctx, cfg.Sheet.OutputPath); err != nil {
			log.Warnf("upload failed: %v", err)
		}
	}
	if deps.Notifier != nil {
		if err := deps.Notifier.DatasetUpdated(ctx, cfg.Sheet.OutputPath, updated); err != nil {
			log.Warnf("refresh event not published: %v", err)
		}
	}
	return nil
}

// GeocodeTable fills the Latitude/Longitude columns for every row whose
// address resolves. Rows with an empty address or already-filled coordinates
// are left alone. The returned count covers rows updated via live lookup
// only, not cache hits.
func GeocodeTable(ctx context.Context, t *sheet.Table, addressCol string, resolver *geocode.Resolver) (int, error) {
	log := logger.Get("prepare.geocode")

	addrIdx := t.ColumnIndex(addressCol)
	if addrIdx < 0 {
		return 0, fmt.Errorf("could not find the column %q in the workbook", addressCol)
	}
	latIdx := t.EnsureColumn("Latitude")
	lngIdx := t.EnsureColumn("Longitude")

	updated := 0
	for i := range t.Rows {
		addr := geocode.NormalizeQuery(t.Get(i, addrIdx))
		if addr == "" {
			continue
		}
		if hasCoords(t.Get(i, latIdx), t.Get(i, lngIdx)) {
			continue
		}

		result, cached, err := resolver.Resolve(ctx, addr)
		if err != nil {
			return updated, err
		}
		if !result.Found {
			log.Debugf("no result for %q", addr)
			continue
		}
		t.Set(i, latIdx, formatCoord(result.Lat))
		t.Set(i, lngIdx, formatCoord(result.Lng))
		if !cached {
			updated++
		}
		if (i+1)%25 == 0 {
			log.Infof("geocoding progress: %d/%d rows", i+1, len(t.Rows))
		}
	}
	return updated, nil
}

// Recategorize replaces the category column with classifier buckets, backing
// up the original values into a "(Original)" sibling column first. The backup
// is created only once, so re-running never clobbers the saved originals.
// Returns false when the category column is missing.
func Recategorize(t *sheet.Table, categoryCol string) bool {
	catIdx := t.ColumnIndex(categoryCol)
	if catIdx < 0 {
		return false
	}

	backup := categoryCol + " (Original)"
	if t.ColumnIndex(backup) < 0 {
		backupIdx := t.EnsureColumn(backup)
		for i := range t.Rows {
			t.Set(i, backupIdx, t.Get(i, catIdx))
		}
	}

	for i := range t.Rows {
		t.Set(i, catIdx, resource.Classify(t.Get(i, catIdx)))
	}
	return true
}

func hasCoords(lat, lng string) bool {
	_, latErr := strconv.ParseFloat(lat, 64)
	_, lngErr := strconv.ParseFloat(lng, 64)
	return latErr == nil && lngErr == nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
