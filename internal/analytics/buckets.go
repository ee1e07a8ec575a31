package analytics

import "encoding/json"

// Buckets accumulates position sizes by key. Keys are kept in the order they
// were first added so that anything iterating them is deterministic.
// A key that was never added is absent, not zero.
type Buckets struct {
	keys   []string
	totals map[string]float64
}

func newBuckets() *Buckets {
	return &Buckets{totals: make(map[string]float64)}
}

// Add inserts key with a zero total on first use, then adds size to it.
func (b *Buckets) Add(key string, size float64) {
	if _, ok := b.totals[key]; !ok {
		b.keys = append(b.keys, key)
		b.totals[key] = 0
	}
	b.totals[key] += size
}

// Get returns the total for key and whether key has any positions.
func (b *Buckets) Get(key string) (float64, bool) {
	v, ok := b.totals[key]
	return v, ok
}

// Keys returns bucket keys in first-appearance order.
func (b *Buckets) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

func (b *Buckets) Len() int {
	return len(b.keys)
}

// Map returns a copy of the totals as a plain map.
func (b *Buckets) Map() map[string]float64 {
	out := make(map[string]float64, len(b.totals))
	for k, v := range b.totals {
		out[k] = v
	}
	return out
}

func (b *Buckets) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.totals)
}
