package metrics

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/direct"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
)

type fakeStats struct {
	name    string
	queries uint64
}

func (f fakeStats) FullName() string { return f.name }
func (f fakeStats) Layout() string { return "complex_key_direct" }
func (f fakeStats) QueryCount() uint64 { return f.queries }
func (f fakeStats) HitRate() float64 { return 0.5 }
func (f fakeStats) ElementCount() uint64 { return 7 }
func (f fakeStats) BytesAllocated() uint64 { return 64 }
func (f fakeStats) LoadFactor() float64 { return 0.25 }

func newDictionary(t *testing.T) direct.Dictionary {
	t.Helper()
	s := &structure.Structure{
		ID:         &structure.KeyColumn{Name: "id"},
		Attributes: []structure.Attribute{{Name: "value", Type: field.TypeUInt64}},
	}
	require.NoError(t, s.Validate())
	src, err := source.NewMemory(s, [][]field.Value{{field.UInt64(1), field.UInt64(10)}})
	require.NoError(t, err)
	d, err := direct.NewSimple(structure.ID{Database: "geo", Name: "regions"}, s, src)
	require.NoError(t, err)
	return d
}

func TestCollector_Dictionary(t *testing.T) {
	d := newDictionary(t)
	_, err := d.GetColumn(context.Background(), "value", field.TypeInvalid,
		[]column.Column{column.UInt64s(1, 2, 3)}, nil, nil)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(d))

	err = testutil.CollectAndCompare(reg, strings.NewReader(`
		# HELP directdict_query_count_total Rows answered by the dictionary since it was created.
		# TYPE directdict_query_count_total counter
		directdict_query_count_total{dictionary="geo.regions",layout="direct"} 3
		# HELP directdict_hit_rate Fraction of lookups served without a source round trip.
		# TYPE directdict_hit_rate gauge
		directdict_hit_rate{dictionary="geo.regions",layout="direct"} 1
		# HELP directdict_element_count Elements held in memory by the dictionary.
		# TYPE directdict_element_count gauge
		directdict_element_count{dictionary="geo.regions",layout="direct"} 0
	`), "directdict_query_count_total", "directdict_hit_rate", "directdict_element_count")
	require.NoError(t, err)
}

func TestCollector_AddRemove(t *testing.T) {
	c := NewCollector(fakeStats{name: "a", queries: 1})
	c.Add(fakeStats{name: "b", queries: 2})
	c.Add(fakeStats{name: "a", queries: 5})
	assert.Equal(t, []string{"a", "b"}, c.Names())

	// 5 series per dictionary
	assert.Equal(t, 10, testutil.CollectAndCount(c))

	c.Remove("a")
	assert.Equal(t, []string{"b"}, c.Names())
	assert.Equal(t, 5, testutil.CollectAndCount(c, "directdict_query_count_total", "directdict_hit_rate",
		"directdict_element_count", "directdict_bytes_allocated", "directdict_load_factor"))
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(fakeStats{name: "geo.codes", queries: 4}))

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))

	out := buf.String()
	assert.Contains(t, out, "# TYPE directdict_query_count_total counter")
	assert.Contains(t, out, `directdict_query_count_total{dictionary="geo.codes",layout="complex_key_direct"} 4`)
	assert.Contains(t, out, `directdict_bytes_allocated{dictionary="geo.codes",layout="complex_key_direct"} 64`)
	assert.Contains(t, out, `directdict_load_factor{dictionary="geo.codes",layout="complex_key_direct"} 0.25`)
}

func TestSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(fakeStats{name: "geo.codes", queries: 4}))

	snap, err := Snapshot(reg)
	require.NoError(t, err)

	series := `{dictionary="geo.codes",layout="complex_key_direct"}`
	assert.Equal(t, map[string]float64{
		"directdict_query_count_total" + series: 4,
		"directdict_hit_rate" + series:          0.5,
		"directdict_element_count" + series:     7,
		"directdict_bytes_allocated" + series:   64,
		"directdict_load_factor" + series:       0.25,
	}, snap)
}
