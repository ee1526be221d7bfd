package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/kilnlab/oven-telemetry/internal/grid"
	"github.com/kilnlab/oven-telemetry/internal/oven"
)

const (
	dpi      = 72.0
	fontSize = 12.0
	spacing  = 1.2

	cellWidth  = 56
	cellHeight = 44

	topBorder    = 40
	leftBorder   = 20
	bottomBorder = 90
	rightBorder  = 20
)

var (
	backgroundColor = color.RGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff}
	emptyCellColor  = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	gridLineColor   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
)

// CellValue is one box of the rendered layout: its grid geometry, the
// channel placed on it (0 when unassigned), the channel's resolved reading
// and the cell's performance-setting string.
type CellValue struct {
	Cell    grid.Cell
	Channel int
	Reading oven.Reading
	Setting string
}

// Snapshot is everything the renderer needs for one frame: the resolved
// cell values at one playback offset plus the aggregate statistics shown in
// the footer.
type Snapshot struct {
	Topology grid.Topology
	Offset   time.Duration
	Target   string
	Cells    []CellValue
	Bounds   TempBounds
	Average  *float64
	Min      *float64
	Max      *float64
}

// GridRenderer paints a snapshot of the sensor layout as an image.
type GridRenderer struct {
	colors      *ColorMapper
	context     *freetype.Context
	theme       ColorTheme
	annotations bool
}

func NewGridRenderer(theme ColorTheme, annotations bool) (*GridRenderer, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetSrc(image.Black)
	context.SetHinting(font.HintingFull)

	return &GridRenderer{context: context, theme: theme, annotations: annotations}, nil
}

// Render paints the snapshot. Cell fill colors are scaled to the snapshot's
// temperature bounds; unassigned cells stay neutral and cells whose channel
// resolved to a sentinel use the dedicated sentinel colors.
func (r *GridRenderer) Render(snap *Snapshot) (*image.RGBA, error) {
	r.colors = NewColorMapper(r.theme, snap.Bounds)

	width := grid.Cols*cellWidth + leftBorder + rightBorder
	height := grid.Rows*cellHeight + topBorder + bottomBorder

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	r.context.SetClip(img.Bounds())
	r.context.SetDst(img)

	for _, cv := range snap.Cells {
		r.drawCell(img, cv)
	}

	if r.annotations {
		if err := r.drawFooter(img, snap); err != nil {
			return nil, fmt.Errorf("drawing footer: %w", err)
		}
	}

	return img, nil
}

func (r *GridRenderer) drawCell(img *image.RGBA, cv CellValue) {
	rect := image.Rect(
		leftBorder+cv.Cell.Col*cellWidth,
		topBorder+cv.Cell.Row*cellHeight,
		leftBorder+(cv.Cell.Col+cv.Cell.ColSpan)*cellWidth,
		topBorder+(cv.Cell.Row+cv.Cell.RowSpan)*cellHeight,
	)

	draw.Draw(img, rect, &image.Uniform{C: r.cellColor(cv)}, image.Point{}, draw.Src)
	r.drawOutline(img, rect)

	if !r.annotations {
		return
	}

	lineHeight := r.context.PointToFixed(fontSize * spacing)

	pt := freetype.Pt(rect.Min.X+4, rect.Min.Y+14)
	if cv.Channel > 0 {
		_, _ = r.context.DrawString(fmt.Sprintf("CH%d", cv.Channel), pt)
		pt.Y += lineHeight
		_, _ = r.context.DrawString(cv.Reading.Display(), pt)
		pt.Y += lineHeight
	}
	if cv.Setting != "" {
		_, _ = r.context.DrawString(cv.Setting, pt)
	}
}

func (r *GridRenderer) cellColor(cv CellValue) color.Color {
	if cv.Channel == 0 {
		return emptyCellColor
	}
	if v, ok := cv.Reading.Value(); ok {
		return r.colors.Color(v)
	}
	if cv.Reading.IsBurnout() {
		return burnoutColor
	}
	return noDataColor
}

func (r *GridRenderer) drawOutline(img *image.RGBA, rect image.Rectangle) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.Set(x, rect.Min.Y, gridLineColor)
		img.Set(x, rect.Max.Y-1, gridLineColor)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.Set(rect.Min.X, y, gridLineColor)
		img.Set(rect.Max.X-1, y, gridLineColor)
	}
}

func (r *GridRenderer) drawFooter(img *image.RGBA, snap *Snapshot) error {
	lines := []string{
		fmt.Sprintf("Topology: %s", snap.Topology),
		fmt.Sprintf("Offset: %s (record %s)", snap.Offset, snap.Target),
		fmt.Sprintf("Avg: %s   Min: %s   Max: %s",
			formatStat(snap.Average), formatStat(snap.Min), formatStat(snap.Max)),
	}

	top := img.Bounds().Max.Y - bottomBorder + 20
	pt := freetype.Pt(leftBorder, top)
	for _, line := range lines {
		if _, err := r.context.DrawString(line, pt); err != nil {
			return err
		}
		pt.Y += r.context.PointToFixed(fontSize * spacing)
	}

	return nil
}

func formatStat(v *float64) string {
	if v == nil {
		return oven.UnavailableLabel
	}
	return fmt.Sprintf("%.1f°C", *v)
}
