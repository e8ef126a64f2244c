package views

// Tableau10 and Paired are the categorical color schemes countries are
// colored from, in that order.
var (
	Tableau10 = []string{
		"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
		"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
	}
	Paired = []string{
		"#a6cee3", "#1f78b4", "#b2df8a", "#33a02c", "#fb9a99", "#e31a1c",
		"#fdbf6f", "#ff7f00", "#cab2d6", "#6a3d9a", "#ffff99", "#b15928",
	}
)

// HighlightColor fills the bar of the last-added country.
const HighlightColor = "red"

// Palette is an ordinal color scale. A key gets the next color the first
// time it is seen and keeps it; colors repeat once the range runs out.
type Palette struct {
	colors   []string
	assigned map[string]string
}

// NewPalette returns a palette over Tableau10 followed by Paired.
func NewPalette() *Palette {
	colors := make([]string, 0, len(Tableau10)+len(Paired))
	colors = append(colors, Tableau10...)
	colors = append(colors, Paired...)
	return &Palette{colors: colors, assigned: make(map[string]string)}
}

// Color returns the color for key, assigning one on first use.
func (p *Palette) Color(key string) string {
	if c, ok := p.assigned[key]; ok {
		return c
	}
	c := p.colors[len(p.assigned)%len(p.colors)]
	p.assigned[key] = c
	return c
}

// Len returns how many keys have been assigned a color.
func (p *Palette) Len() int {
	return len(p.assigned)
}
