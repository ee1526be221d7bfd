package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/kilnlab/oven-telemetry/internal/grid"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath        string
	MeasurementA  int64
	MeasurementB  int64
	Topology      grid.Topology
	Offset        time.Duration
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:   ImagePNG,
		Topology: grid.MainTop,
		Theme:    ClassicTheme,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, topology, theme string
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.MeasurementA, "a", 0, "Measurement ID for channel group 1-10")
	flag.Int64Var(&c.MeasurementB, "b", 0, "Measurement ID for channel group 11-20")
	flag.StringVar(&topology, "t", string(grid.MainTop), "Canvas topology. [main-top, main-bottom, reinforcement-top, reinforcement-bottom]")
	flag.DurationVar(&c.Offset, "offset", 0, "Playback offset from trigger time (e.g. 90s, 2m)")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&theme, "theme", string(ClassicTheme), "Color theme. [classic, grayscale, thermal]")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable cell annotations such as channel numbers and readings")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.MeasurementA == 0 && c.MeasurementB == 0 {
		err = errors.New("at least one measurement id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if c.Offset < 0 {
		err = errors.New("offset must not be negative")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.Topology, err = grid.ParseTopology(topology); err == nil {
		c.Theme, err = ParseColorTheme(theme)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
