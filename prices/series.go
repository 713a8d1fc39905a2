package prices

import (
	"slices"
	"time"

	"github.com/avdberg/spotwatch-go/hours"
)

// Series is a list of hourly points sorted ascending by From with at
// most one point per hour. Build one with NewSeries to get those
// invariants.
type Series []Point

// NewSeries sorts the points by hour and drops duplicates, keeping the
// last point seen for an hour. Fetching today and tomorrow as separate
// day windows may overlap on transition hours, the fresher fetch wins.
func NewSeries(points []Point) Series {
	s := make(Series, len(points))
	for i, p := range points {
		p.From = hours.Start(p.From)
		s[i] = p
	}
	slices.SortStableFunc(s, func(a, b Point) int {
		return a.From.Compare(b.From)
	})
	out := s[:0]
	for _, p := range s {
		if len(out) > 0 && out[len(out)-1].From.Equal(p.From) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// Merge combines two series into a new one. Points in other win over
// points in s for the same hour.
func (s Series) Merge(other Series) Series {
	combined := make([]Point, 0, len(s)+len(other))
	combined = append(combined, s...)
	combined = append(combined, other...)
	return NewSeries(combined)
}

func (s Series) Clone() Series {
	return slices.Clone(s)
}

func (s Series) IsEmpty() bool {
	return len(s) == 0
}

// At returns the point covering the hour of t.
func (s Series) At(t time.Time) (Point, bool) {
	hour := hours.Start(t)
	i, found := slices.BinarySearchFunc(s, hour, func(p Point, h time.Time) int {
		return p.From.Compare(h)
	})
	if !found {
		return Point{}, false
	}
	return s[i], true
}

// Window returns the points in the half-open interval [from, till).
func (s Series) Window(from, till time.Time) Series {
	lo, _ := slices.BinarySearchFunc(s, hours.Start(from), func(p Point, h time.Time) int {
		return p.From.Compare(h)
	})
	hi, _ := slices.BinarySearchFunc(s, hours.Start(till), func(p Point, h time.Time) int {
		return p.From.Compare(h)
	})
	return s[lo:hi]
}

// After returns the points for hours strictly after the hour of t.
func (s Series) After(t time.Time) Series {
	lo, _ := slices.BinarySearchFunc(s, hours.Next(t), func(p Point, h time.Time) int {
		return p.From.Compare(h)
	})
	return s[lo:]
}

// Min returns the point with the lowest all-in price. Ties go to the
// earliest hour.
func (s Series) Min() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	min := s[0]
	for _, p := range s[1:] {
		if p.Total() < min.Total() {
			min = p
		}
	}
	return min, true
}

// Max returns the point with the highest all-in price. Ties go to the
// earliest hour.
func (s Series) Max() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	max := s[0]
	for _, p := range s[1:] {
		if p.Total() > max.Total() {
			max = p
		}
	}
	return max, true
}

// Avg returns the mean over the series of the given price component.
func (s Series) Avg(value func(Point) float64) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range s {
		sum += value(p)
	}
	return sum / float64(len(s)), true
}
