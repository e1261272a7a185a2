package filter

// Smoother filters X and Y independently with a shared timestamp.
type Smoother struct {
	x *OneEuro
	y *OneEuro
}

// NewSmoother creates a Smoother with the same parameters on both axes.
func NewSmoother(config Config) (*Smoother, error) {
	x, err := NewOneEuro(config)
	if err != nil {
		return nil, err
	}
	y, err := NewOneEuro(config)
	if err != nil {
		return nil, err
	}
	return &Smoother{x: x, y: y}, nil
}

// Filter smooths a coordinate pair observed at timestampMs.
func (s *Smoother) Filter(x, y float64, timestampMs int64) (float64, float64) {
	return s.x.Filter(x, timestampMs), s.y.Filter(y, timestampMs)
}

// Reset clears the history of both axes.
func (s *Smoother) Reset() {
	s.x.Reset()
	s.y.Reset()
}
