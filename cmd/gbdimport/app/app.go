package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/kilnlab/oven-telemetry/internal/gbd"
	"github.com/kilnlab/oven-telemetry/internal/oven"
	"github.com/kilnlab/oven-telemetry/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store := storage.NewSqliteStore(config.Storage.DatabasePath)
	defer store.Close()

	for _, imp := range config.Imports {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := importFile(ctx, store, imp, logger); err != nil {
			return fmt.Errorf("importing %q: %w", imp.File, err)
		}
	}

	return nil
}

func importFile(ctx context.Context, store storage.Store, imp ImportConfig, logger *slog.Logger) error {
	if !gbd.IsMeasurementFile(imp.File) {
		return fmt.Errorf("not a measurement file (want %s extension)", gbd.Extension)
	}

	stat, err := os.Stat(imp.File)
	if err != nil {
		return fmt.Errorf("reading measurement file %q: %w", imp.File, err)
	}

	header, records, err := gbd.DecodeFile(imp.File)
	if err != nil {
		return err
	}

	m := oven.NewMeasurement(filepath.Base(imp.File), imp.Group, records)
	id, err := store.InsertMeasurement(ctx, m)
	if err != nil {
		return err
	}

	logger.Info("imported measurement",
		slog.Int64("id", id),
		slog.String("file", m.Filename),
		slog.String("group", string(m.Group)),
		slog.String("size", humanize.Bytes(uint64(stat.Size()))),
		slog.String("records", humanize.Comma(int64(len(records)))),
		slog.Int("channels", header.ChannelCount),
		slog.String("trigger", header.Trigger.Format(oven.TimestampLayout)),
		slog.Duration("interval", header.SampleInterval),
	)

	return nil
}
