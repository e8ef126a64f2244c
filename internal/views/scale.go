package views

// Domain is the input extent of a linear scale. Empty marks a domain
// computed from no values; Min and Max are then zero.
type Domain struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Empty bool    `json:"empty,omitempty"`
}

// LinearScale is a persistent numeric axis. Previous holds the domain
// before the last update so clients can animate the transition.
type LinearScale struct {
	Domain   Domain  `json:"domain"`
	Previous *Domain `json:"previous,omitempty"`

	set bool
}

// Update replaces the domain, keeping the old one in Previous.
func (s *LinearScale) Update(d Domain) {
	if s.set {
		prev := s.Domain
		s.Previous = &prev
	}
	s.Domain = d
	s.set = true
}

// BandScale is a persistent categorical axis.
type BandScale struct {
	Domain   []string `json:"domain"`
	Previous []string `json:"previous,omitempty"`

	set bool
}

// Update replaces the band domain, keeping the old one in Previous.
func (s *BandScale) Update(domain []string) {
	if s.set {
		s.Previous = s.Domain
	}
	s.Domain = domain
	s.set = true
}

// zeroMax returns [0, max(values)].
func zeroMax(values []float64) Domain {
	if len(values) == 0 {
		return Domain{Empty: true}
	}
	d := Domain{Max: values[0]}
	for _, v := range values[1:] {
		if v > d.Max {
			d.Max = v
		}
	}
	return d
}

// extent returns [min(values), max(values)].
func extent(values []float64) Domain {
	if len(values) == 0 {
		return Domain{Empty: true}
	}
	d := Domain{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < d.Min {
			d.Min = v
		}
		if v > d.Max {
			d.Max = v
		}
	}
	return d
}
