// Package metrics exposes dictionary statistics to Prometheus.
package metrics

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "directdict"

var labels = []string{"dictionary", "layout"}

var (
	queryCountDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "query_count_total"),
		"Rows answered by the dictionary since it was created.",
		labels, nil,
	)
	hitRateDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "hit_rate"),
		"Fraction of lookups served without a source round trip.",
		labels, nil,
	)
	elementCountDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "element_count"),
		"Elements held in memory by the dictionary.",
		labels, nil,
	)
	bytesAllocatedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "bytes_allocated"),
		"Bytes held in memory by the dictionary.",
		labels, nil,
	)
	loadFactorDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "load_factor"),
		"Fill ratio of the dictionary's in-memory storage.",
		labels, nil,
	)
)

// Stats is the part of a dictionary the collector reads.
type Stats interface {
	FullName() string
	Layout() string
	QueryCount() uint64
	HitRate() float64
	ElementCount() uint64
	BytesAllocated() uint64
	LoadFactor() float64
}

// Collector reports Stats for a set of dictionaries. Values are read at
// scrape time.
type Collector struct {
	mu    sync.RWMutex
	dicts map[string]Stats
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for dicts.
func NewCollector(dicts ...Stats) *Collector {
	c := &Collector{dicts: make(map[string]Stats)}
	for _, d := range dicts {
		c.Add(d)
	}
	return c
}

// Add starts reporting d, replacing a dictionary with the same full name.
func (c *Collector) Add(d Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dicts[d.FullName()] = d
}

// Remove stops reporting the dictionary with the given full name.
func (c *Collector) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.dicts, name)
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queryCountDesc
	ch <- hitRateDesc
	ch <- elementCountDesc
	ch <- bytesAllocatedDesc
	ch <- loadFactorDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.dicts {
		name, layout := d.FullName(), d.Layout()
		ch <- prometheus.MustNewConstMetric(queryCountDesc, prometheus.CounterValue, float64(d.QueryCount()), name, layout)
		ch <- prometheus.MustNewConstMetric(hitRateDesc, prometheus.GaugeValue, d.HitRate(), name, layout)
		ch <- prometheus.MustNewConstMetric(elementCountDesc, prometheus.GaugeValue, float64(d.ElementCount()), name, layout)
		ch <- prometheus.MustNewConstMetric(bytesAllocatedDesc, prometheus.GaugeValue, float64(d.BytesAllocated()), name, layout)
		ch <- prometheus.MustNewConstMetric(loadFactorDesc, prometheus.GaugeValue, d.LoadFactor(), name, layout)
	}
}

// WriteText writes every family gathered from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// Snapshot flattens the counters and gauges gathered from g into
// `name{label="value",...}` keys, for JSON output.
func Snapshot(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var v float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				v = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				v = m.GetGauge().GetValue()
			default:
				continue
			}
			out[seriesName(mf.GetName(), m.GetLabel())] = v
		}
	}
	return out, nil
}

func seriesName(name string, pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return name
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	slices.Sort(parts)
	return name + "{" + strings.Join(parts, ",") + "}"
}

// Names returns the full names of the reported dictionaries, sorted.
func (c *Collector) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.dicts))
	for name := range c.dicts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
