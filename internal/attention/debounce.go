// Package attention turns raw per-frame presence readings into a stable
// attention state and decides when playback should pause or resume.
package attention

const (
	DefaultPresentThreshold = 2
	DefaultAbsentThreshold  = 3
)

// Filter debounces raw presence readings with asymmetric streak thresholds.
// It is not safe for concurrent use; the poll loop owns it.
type Filter struct {
	presentThreshold int
	absentThreshold  int

	stable        bool
	presentStreak int // consecutive present readings
	absentStreak  int // consecutive absent readings
}

// NewFilter creates a filter starting in the absent state. Thresholds below 1
// are raised to 1.
func NewFilter(presentThreshold, absentThreshold int) *Filter {
	if presentThreshold < 1 {
		presentThreshold = 1
	}
	if absentThreshold < 1 {
		absentThreshold = 1
	}
	return &Filter{
		presentThreshold: presentThreshold,
		absentThreshold:  absentThreshold,
	}
}

// Update feeds one raw reading and returns the stable state after it.
func (f *Filter) Update(raw bool) bool {
	stable, _ := f.Step(raw)
	return stable
}

// Step is Update that also reports whether the stable state flipped.
func (f *Filter) Step(raw bool) (stable, changed bool) {
	if raw {
		f.absentStreak = 0
		f.presentStreak++
		if !f.stable && f.presentStreak >= f.presentThreshold {
			f.stable = true
			changed = true
		}
		return f.stable, changed
	}

	f.presentStreak = 0
	f.absentStreak++
	if f.stable && f.absentStreak >= f.absentThreshold {
		f.stable = false
		changed = true
	}
	return f.stable, changed
}

// Stable returns the current debounced state
func (f *Filter) Stable() bool {
	return f.stable
}

// PresentStreak returns the current consecutive present count
func (f *Filter) PresentStreak() int {
	return f.presentStreak
}

// AbsentStreak returns the current consecutive absent count
func (f *Filter) AbsentStreak() int {
	return f.absentStreak
}
