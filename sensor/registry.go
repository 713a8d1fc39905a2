package sensor

import (
	"sync"
	"time"

	"github.com/avdberg/spotwatch-go/convert"
	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/types"
)

// Registry holds the currently enabled subset of the catalog. The set
// follows the config file and can change at runtime, so access is
// guarded.
type Registry struct {
	mu      sync.RWMutex
	enabled []Descriptor
}

// NewRegistry starts with every catalog sensor enabled. Narrow the set
// with SetEnabled.
func NewRegistry() *Registry {
	return &Registry{enabled: Catalog()}
}

// SetEnabled replaces the enabled set. An empty key list enables the
// whole catalog. Unknown keys are returned so the caller can log them,
// the known ones still apply.
func (r *Registry) SetEnabled(keys []string) (unknown []string) {
	if len(keys) == 0 {
		r.mu.Lock()
		r.enabled = Catalog()
		r.mu.Unlock()
		return nil
	}

	byKey := make(map[string]Descriptor, len(catalog))
	for _, d := range catalog {
		byKey[d.Key] = d
	}

	// Keep catalog order regardless of config order.
	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		if _, ok := byKey[key]; !ok {
			unknown = append(unknown, key)
			continue
		}
		wanted[key] = true
	}
	enabled := make([]Descriptor, 0, len(wanted))
	for _, d := range catalog {
		if wanted[d.Key] {
			enabled = append(enabled, d)
		}
	}

	r.mu.Lock()
	r.enabled = enabled
	r.mu.Unlock()
	return unknown
}

// Enabled returns a copy of the enabled descriptors in catalog order.
func (r *Registry) Enabled() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Descriptor(nil), r.enabled...)
}

// Reading is one sensor's value at a moment in time. Value is nil when
// the statistic has no data, which is a valid state and not an error.
type Reading struct {
	Key       string          `json:"key"`
	Name      string          `json:"name"`
	Commodity types.Commodity `json:"commodity"`
	Unit      string          `json:"unit,omitempty"`
	Value     *float64        `json:"value"`
	At        *time.Time      `json:"at,omitempty"`
}

// Read evaluates every enabled sensor against the coordinator's
// current caches.
func (r *Registry) Read(c *coordinator.Coordinator) []Reading {
	enabled := r.Enabled()
	readings := make([]Reading, 0, len(enabled))
	for _, d := range enabled {
		readings = append(readings, readOne(c, d))
	}
	return readings
}

func readOne(c *coordinator.Coordinator, d Descriptor) Reading {
	reading := Reading{
		Key:       d.Key,
		Name:      d.Name,
		Commodity: d.Commodity,
		Unit:      d.Unit,
	}

	v, ok := c.Statistic(d.Commodity, d.Stat)
	if !ok || !v.IsValid() {
		return reading
	}

	sv := v.Value()
	value := convert.RoundFloat64(sv.Value, d.Precision)
	reading.Value = &value
	if !sv.At.IsZero() {
		at := sv.At
		reading.At = &at
	}
	return reading
}
