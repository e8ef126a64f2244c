package views

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/model"
)

// Selection is the membership view the synchronizer filters records by.
type Selection interface {
	Contains(alias string) bool
	IsLastAdded(alias string) bool
}

// Input is everything a sync depends on besides the dataset.
type Input struct {
	Selection Selection
	Field     string
	Year      int
}

// Options tune the synchronizer.
type Options struct {
	// LineYearMin and LineYearMax fix the line chart x domain.
	LineYearMin int
	LineYearMax int
}

// Bar is one bar of the bar chart.
type Bar struct {
	Country     string  `json:"country"`
	Year        int     `json:"year"`
	Value       float64 `json:"value"`
	Color       string  `json:"color"`
	Highlighted bool    `json:"highlighted"`
	Tooltip     string  `json:"tooltip"`
}

// BarView is the bar chart of the selected field in the selected year.
type BarView struct {
	Title     string      `json:"title"`
	AxisLabel string      `json:"axis_label"`
	Bars      []Bar       `json:"bars"`
	X         LinearScale `json:"x"`
	Y         BandScale   `json:"y"`
}

// Point is one (year, value) point of a line series.
type Point struct {
	Year    int     `json:"year"`
	Value   float64 `json:"value"`
	Tooltip string  `json:"tooltip"`
}

// Series is one country's line.
type Series struct {
	Country string  `json:"country"`
	Color   string  `json:"color"`
	Points  []Point `json:"points"`
}

// LineView is the selected field over the years for every selected country.
type LineView struct {
	Title     string      `json:"title"`
	AxisLabel string      `json:"axis_label"`
	Series    []Series    `json:"series"`
	X         LinearScale `json:"x"`
	XTicks    []int       `json:"x_ticks"`
	Y         LinearScale `json:"y"`
}

// ScatterPoint plots life expectancy against the selected field.
type ScatterPoint struct {
	Country string  `json:"country"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Color   string  `json:"color"`
	Tooltip string  `json:"tooltip"`
}

// ScatterView is the scatter plot for the selected year.
type ScatterView struct {
	XLabel string         `json:"x_label"`
	YLabel string         `json:"y_label"`
	Points []ScatterPoint `json:"points"`
	X      LinearScale    `json:"x"`
	Y      LinearScale    `json:"y"`
}

// LegendEntry is one swatch of the legend.
type LegendEntry struct {
	Country string `json:"country"`
	Color   string `json:"color"`
}

// MapCountry is the state of one map feature.
type MapCountry struct {
	Name      string   `json:"name"`
	Continent string   `json:"continent,omitempty"`
	Key       string   `json:"key,omitempty"`
	Selected  bool     `json:"selected"`
	LastAdded bool     `json:"last_added"`
	HasData   bool     `json:"has_data"`
	Value     *float64 `json:"value,omitempty"`
}

// MapView covers every feature, selected or not.
type MapView struct {
	Countries []MapCountry `json:"countries"`
}

// Snapshot is the output of one sync.
type Snapshot struct {
	Field   model.Field   `json:"field"`
	Year    int           `json:"year"`
	Map     MapView       `json:"map"`
	Bar     BarView       `json:"bar"`
	Line    LineView      `json:"line"`
	Scatter ScatterView   `json:"scatter"`
	Legend  []LegendEntry `json:"legend"`
}

// Synchronizer recomputes every view from scratch on each Sync. Its
// palette and scales persist between syncs. It is not safe for concurrent use.
type Synchronizer struct {
	data    *Data
	opts    Options
	palette *Palette

	barX     LinearScale
	barY     BandScale
	lineX    LinearScale
	lineY    LinearScale
	scatterX LinearScale
	scatterY LinearScale
}

// NewSynchronizer creates a synchronizer over data.
func NewSynchronizer(data *Data, opts Options) *Synchronizer {
	if opts.LineYearMin == 0 && opts.LineYearMax == 0 {
		opts.LineYearMin, opts.LineYearMax = 2000, 2015
	}
	s := &Synchronizer{data: data, opts: opts, palette: NewPalette()}
	s.lineX.Update(Domain{Min: float64(opts.LineYearMin), Max: float64(opts.LineYearMax)})
	return s
}

// Palette returns the session's color assignment.
func (s *Synchronizer) Palette() *Palette {
	return s.palette
}

// Data returns the dataset the synchronizer reads.
func (s *Synchronizer) Data() *Data {
	return s.data
}

// Sync derives all five views. The order bar, line, scatter, legend, map
// fixes the order countries are first assigned palette colors.
func (s *Synchronizer) Sync(in Input) (Snapshot, error) {
	field, err := s.data.Fields.Lookup(in.Field)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "views: sync")
	}

	snap := Snapshot{Field: field, Year: in.Year}
	snap.Bar = s.bar(in, field)
	snap.Line = s.line(in, field)
	snap.Scatter = s.scatter(in, field)
	snap.Legend = s.legend(snap.Bar)
	snap.Map = s.mapView(in, field)

	zap.L().Debug("views: synced",
		zap.String("field", field.Key),
		zap.Int("year", in.Year),
		zap.Int("bars", len(snap.Bar.Bars)),
		zap.Int("series", len(snap.Line.Series)),
		zap.Int("points", len(snap.Scatter.Points)),
	)
	return snap, nil
}

func (s *Synchronizer) bar(in Input, field model.Field) BarView {
	bars := make([]Bar, 0)
	for _, r := range s.data.Records {
		if r.Year != in.Year || !in.Selection.Contains(r.Country) {
			continue
		}
		v, ok := r.Value(field.Key)
		if !ok {
			continue
		}
		bars = append(bars, Bar{
			Country: r.Country,
			Year:    r.Year,
			Value:   v,
			Tooltip: barTooltip(r.Country, field, v),
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Value > bars[j].Value })

	values := make([]float64, len(bars))
	bands := make([]string, len(bars))
	for i := range bars {
		b := &bars[i]
		b.Color = s.palette.Color(b.Country)
		if in.Selection.IsLastAdded(b.Country) {
			b.Highlighted = true
			b.Color = HighlightColor
		}
		values[i] = b.Value
		bands[i] = b.Country
	}

	s.barX.Update(zeroMax(values))
	s.barY.Update(bands)

	return BarView{
		Title:     fmt.Sprintf("%s by Country in %d", field.Label, in.Year),
		AxisLabel: field.Label,
		Bars:      bars,
		X:         s.barX,
		Y:         s.barY,
	}
}

func (s *Synchronizer) line(in Input, field model.Field) LineView {
	series := make([]Series, 0)
	pos := make(map[string]int)
	var values []float64

	for _, r := range s.data.Records {
		if !in.Selection.Contains(r.Country) {
			continue
		}
		i, ok := pos[r.Country]
		if !ok {
			i = len(series)
			pos[r.Country] = i
			series = append(series, Series{Country: r.Country, Points: make([]Point, 0)})
		}
		v, ok := r.Value(field.Key)
		if !ok {
			continue
		}
		series[i].Points = append(series[i].Points, Point{
			Year:    r.Year,
			Value:   v,
			Tooltip: lineTooltip(r.Country, r.Year, field, v),
		})
		values = append(values, v)
	}
	for i := range series {
		series[i].Color = s.palette.Color(series[i].Country)
	}

	s.lineY.Update(zeroMax(values))

	ticks := make([]int, 0, s.opts.LineYearMax-s.opts.LineYearMin+1)
	for y := s.opts.LineYearMin; y <= s.opts.LineYearMax; y++ {
		ticks = append(ticks, y)
	}

	return LineView{
		Title:     fmt.Sprintf("%s Over the Years", field.Label),
		AxisLabel: field.Key,
		Series:    series,
		X:         s.lineX,
		XTicks:    ticks,
		Y:         s.lineY,
	}
}

func (s *Synchronizer) scatter(in Input, field model.Field) ScatterView {
	points := make([]ScatterPoint, 0)
	var xs, ys []float64

	for _, r := range s.data.Records {
		if r.Year != in.Year || !in.Selection.Contains(r.Country) {
			continue
		}
		x, ok := r.Value(model.LifeExpectancyField)
		if !ok {
			continue
		}
		y, ok := r.Value(field.Key)
		if !ok {
			continue
		}
		points = append(points, ScatterPoint{
			Country: r.Country,
			X:       x,
			Y:       y,
			Color:   s.palette.Color(r.Country),
			Tooltip: scatterTooltip(r.Country, field, x, y),
		})
		xs = append(xs, x)
		ys = append(ys, y)
	}

	s.scatterX.Update(extent(xs))
	s.scatterY.Update(zeroMax(ys))

	return ScatterView{
		XLabel: model.LifeExpectancyField,
		YLabel: field.Key,
		Points: points,
		X:      s.scatterX,
		Y:      s.scatterY,
	}
}

// legend mirrors the bars, one swatch per bar in bar order. Swatches keep
// the palette color even for the highlighted bar.
func (s *Synchronizer) legend(bar BarView) []LegendEntry {
	out := make([]LegendEntry, len(bar.Bars))
	for i, b := range bar.Bars {
		out[i] = LegendEntry{Country: b.Country, Color: s.palette.Color(b.Country)}
	}
	return out
}

func (s *Synchronizer) mapView(in Input, field model.Field) MapView {
	countries := make([]MapCountry, len(s.data.Features))
	for i := range s.data.Features {
		f := &s.data.Features[i]
		mc := MapCountry{
			Name:      f.Aliases.Name,
			Continent: f.Continent,
			Key:       f.Key,
			Selected:  in.Selection.Contains(f.Aliases.Name),
			LastAdded: in.Selection.IsLastAdded(f.Aliases.Name),
			HasData:   f.HasData(),
		}
		if rec, ok := f.RecordForYear(in.Year); ok {
			if v, ok := rec.Value(field.Key); ok {
				mc.Value = model.Float(v)
			}
		}
		countries[i] = mc
	}
	return MapView{Countries: countries}
}
