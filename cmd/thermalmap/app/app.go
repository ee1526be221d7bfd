package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"os"

	"github.com/kilnlab/oven-telemetry/internal/grid"
	"github.com/kilnlab/oven-telemetry/internal/oven"
	"github.com/kilnlab/oven-telemetry/internal/resolve"
	"github.com/kilnlab/oven-telemetry/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderSnapshot(ctx, store, config, logger)
}

func renderSnapshot(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) error {
	session := resolve.NewSession()

	var first *oven.Measurement
	for _, load := range []struct {
		id    int64
		group oven.Group
	}{
		{config.MeasurementA, oven.GroupA},
		{config.MeasurementB, oven.GroupB},
	} {
		if load.id == 0 {
			continue
		}

		m, err := store.Measurement(ctx, load.id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("measurement %d not found", load.id)
		}
		if m.Group != load.group {
			return fmt.Errorf("measurement %d holds channel group %s, expected %s", load.id, m.Group, load.group)
		}

		session.SetMeasurement(m)
		if first == nil {
			first = m
		}
	}

	assignments, err := store.Assignments(ctx)
	if err != nil {
		return err
	}

	settings, err := store.Settings(ctx, config.Topology)
	if err != nil {
		return err
	}

	placed := make(map[[2]int]grid.Assignment)
	var channels []int
	for _, a := range assignments {
		if !a.Active {
			session.Deactivate(a.Channel)
		}
		if a.Topology == config.Topology {
			placed[[2]int{a.Row, a.Col}] = a
			channels = append(channels, a.Channel)
		}
	}

	snap := buildSnapshot(config, session, settings, placed, channels)

	target := oven.UnavailableLabel
	if ts, ok := resolve.TargetTimestamp(first, config.Offset); ok {
		target = ts.Format(oven.TimestampLayout)
	}
	snap.Target = target

	logger.Info("resolved snapshot",
		slog.String("topology", string(config.Topology)),
		slog.Duration("offset", config.Offset),
		slog.String("target", snap.Target),
		slog.Int("channels", len(channels)),
		slog.Group("stats",
			slog.String("avg", formatStat(snap.Average)),
			slog.String("min", formatStat(snap.Min)),
			slog.String("max", formatStat(snap.Max)),
		))

	renderer, err := NewGridRenderer(config.Theme, !config.NoAnnotations)
	if err != nil {
		return fmt.Errorf("creating grid renderer: %w", err)
	}

	img, err := renderer.Render(snap)
	if err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}

	logger.Info("writing image",
		slog.String("destination", config.OutputFile),
		slog.String("format", string(config.Format)),
		slog.String("theme", string(config.Theme)),
	)

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImageJPEG:
		return jpeg.Encode(out, img, &jpeg.Options{Quality: 98})
	default:
		return png.Encode(out, img)
	}
}

// buildSnapshot resolves every placed channel at the requested offset and
// collects the temperature bounds the color gradient will span. Aggregates
// run over the placed channel set with the resolver's contribution rules.
func buildSnapshot(config *Config, session *resolve.Session, settings grid.Settings, placed map[[2]int]grid.Assignment, channels []int) *Snapshot {
	bounds := TempBounds{Min: math.MaxFloat64, Max: -math.MaxFloat64}

	var cells []CellValue
	for _, cell := range config.Topology.Cells() {
		cv := CellValue{
			Cell:    cell,
			Reading: oven.Unavailable(),
			Setting: settings.Display(config.Topology, cell.Row, cell.Col),
		}

		if a, ok := placed[[2]int{cell.Row, cell.Col}]; ok {
			cv.Channel = a.Channel
			cv.Reading = session.Value(a.Channel, config.Offset)

			if v, ok := cv.Reading.Value(); ok {
				bounds.Min = math.Min(bounds.Min, v)
				bounds.Max = math.Max(bounds.Max, v)
			}
		}

		cells = append(cells, cv)
	}

	if bounds.Min > bounds.Max { // nothing resolved to a number
		bounds = TempBounds{Min: 0, Max: 100}
	}

	lo, hi := session.MinMax(channels, config.Offset)

	return &Snapshot{
		Topology: config.Topology,
		Offset:   config.Offset,
		Cells:    cells,
		Bounds:   bounds,
		Average:  session.Average(channels, config.Offset),
		Min:      lo,
		Max:      hi,
	}
}
