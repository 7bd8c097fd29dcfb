package metrics

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
)

// family is one named metric with its HELP and TYPE header.
type family interface {
	writeTo(buf *bytes.Buffer)
}

type meta struct {
	name, help, kind string
}

func (m meta) header(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s %s\n", m.name, m.help, m.name, m.kind)
}

type counter struct {
	meta
	n atomic.Uint64
}

func newCounter(name, help string) *counter {
	return &counter{meta: meta{name, help, "counter"}}
}

func (c *counter) inc() { c.n.Add(1) }

func (c *counter) writeTo(buf *bytes.Buffer) {
	c.header(buf)
	fmt.Fprintf(buf, "%s %d\n", c.name, c.n.Load())
}

// labeledCounter is a counter vector over a single label.
type labeledCounter struct {
	meta
	label string

	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter(name, help, label string) *labeledCounter {
	return &labeledCounter{meta: meta{name, help, "counter"}, label: label, values: map[string]uint64{}}
}

func (l *labeledCounter) inc(v string) {
	l.mu.Lock()
	l.values[v]++
	l.mu.Unlock()
}

func (l *labeledCounter) get(v string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values[v]
}

func (l *labeledCounter) writeTo(buf *bytes.Buffer) {
	l.mu.Lock()
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	counts := make([]uint64, len(keys))
	for i, k := range keys {
		counts[i] = l.values[k]
	}
	l.mu.Unlock()

	l.header(buf)
	for i, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", l.name, l.label, k, counts[i])
	}
}

// histogram keeps per-bucket counts; they are made cumulative on render.
type histogram struct {
	meta
	bounds []float64

	mu     sync.Mutex
	counts []uint64
	sum    float64
	total  uint64
}

func newHistogram(name, help string, bounds []float64) *histogram {
	return &histogram{
		meta:   meta{name, help, "histogram"},
		bounds: bounds,
		counts: make([]uint64, len(bounds)),
	}
}

func (h *histogram) observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total++
	h.sum += v
	if i, _ := slices.BinarySearch(h.bounds, v); i < len(h.bounds) {
		h.counts[i]++
	}
}

func (h *histogram) writeTo(buf *bytes.Buffer) {
	h.mu.Lock()
	counts := slices.Clone(h.counts)
	sum, total := h.sum, h.total
	h.mu.Unlock()

	h.header(buf)
	var running uint64
	for i, le := range h.bounds {
		running += counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", h.name, formatBound(le), running)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", h.name, total)
	fmt.Fprintf(buf, "%s_sum %s\n%s_count %d\n", h.name, formatBound(sum), h.name, total)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
