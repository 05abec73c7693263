package direct

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGetColumn_FillsGapsWithDefaults(t *testing.T) {
	src := memory(t, valuesStructure(t), [][]field.Value{
		{u(10), u(100), str("ten")},
		{u(30), u(300), str("thirty")},
	})
	d := newSimple(t, valuesStructure(t), src)

	keys := []column.Column{column.UInt64s(10, 20, 30)}
	got, err := d.GetColumn(context.Background(), "value", field.TypeInvalid, keys, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{100, 0, 300}, got.(*column.Vector[uint64]).Data())

	has, err := d.HasKeys(context.Background(), keys, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 0, 1}, has.Data())

	assert.Equal(t, uint64(6), d.QueryCount())
	assert.Equal(t, int64(2), src.LoadIDCalls())
	assert.Equal(t, int64(0), src.OpenStreams())
}

func TestGetColumn_CompositeKeys(t *testing.T) {
	s := labelStructure(t)
	src := memory(t, s, [][]field.Value{{str("us"), u(2), str("X")}})
	d := newComplex(t, s, src)

	keys := []column.Column{column.NewStrings("us", "us"), column.UInt64s(1, 2)}
	types := []field.Type{field.TypeString, field.TypeUInt64}

	got, err := d.GetColumn(context.Background(), "label", field.TypeString, keys, types, nil)
	require.NoError(t, err)
	assert.Equal(t, []field.Value{str("none"), str("X")}, column.Values(got))

	has, err := d.HasKeys(context.Background(), keys, types)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1}, has.Data())
	assert.Equal(t, int64(2), src.LoadKeyCalls())
}

func TestGetColumn_CompositeConstKey(t *testing.T) {
	s := labelStructure(t)
	src := memory(t, s, [][]field.Value{{str("us"), u(2), str("X")}})
	d := newComplex(t, s, src)

	keys := []column.Column{column.NewConst(field.TypeString, str("us"), 2), column.UInt64s(2, 3)}
	got, err := d.GetColumn(context.Background(), "label", field.TypeInvalid, keys, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []field.Value{str("X"), str("none")}, column.Values(got))
}

func TestGetColumn_DefaultsColumn(t *testing.T) {
	s := valuesStructure(t)
	d := newSimple(t, s, memory(t, s, [][]field.Value{{u(2), u(20), str("two")}}))

	keys := []column.Column{column.UInt64s(1, 2, 3)}
	defaults := column.NewStrings("d1", "d2", "d3")
	got, err := d.GetColumn(context.Background(), "name", field.TypeInvalid, keys, nil, defaults)
	require.NoError(t, err)
	assert.Equal(t, []field.Value{str("d1"), str("two"), str("d3")}, column.Values(got))

	_, err = d.GetColumn(context.Background(), "name", field.TypeInvalid, keys, nil, column.NewStrings("d1"))
	assert.True(t, dicterr.Is(err, dicterr.BadArguments))
}

func TestGetColumn_DuplicateKeys(t *testing.T) {
	s := valuesStructure(t)
	d := newSimple(t, s, memory(t, s, [][]field.Value{{u(1), u(10), str("one")}}))

	got, err := d.GetColumn(context.Background(), "value", field.TypeInvalid,
		[]column.Column{column.UInt64s(1, 1, 2, 1)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 10, 0, 10}, got.(*column.Vector[uint64]).Data())
}

func TestGetColumn_EmptyRequest(t *testing.T) {
	s := valuesStructure(t)
	d := newSimple(t, s, memory(t, s, nil))

	got, err := d.GetColumn(context.Background(), "value", field.TypeInvalid, []column.Column{column.UInt64s()}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, uint64(0), d.QueryCount())
}

func TestGetColumn_Errors(t *testing.T) {
	s := valuesStructure(t)
	d := newSimple(t, s, memory(t, s, nil))
	ctx := context.Background()
	ids := []column.Column{column.UInt64s(1)}

	_, err := d.GetColumn(ctx, "missing", field.TypeInvalid, ids, nil, nil)
	assert.True(t, dicterr.Is(err, dicterr.BadArguments))
	assert.ErrorContains(t, err, "dictionary=test.dict")

	_, err = d.GetColumn(ctx, "value", field.TypeString, ids, nil, nil)
	assert.True(t, dicterr.Is(err, dicterr.TypeMismatch))

	_, err = d.GetColumn(ctx, "value", field.TypeInvalid, []column.Column{column.NewStrings("1")}, nil, nil)
	assert.True(t, dicterr.Is(err, dicterr.TypeMismatch))
	assert.ErrorContains(t, err, "expected UInt64")

	_, err = d.GetColumn(ctx, "value", field.TypeInvalid,
		[]column.Column{column.NewVector(field.TypeUInt32, []uint32{1})}, nil, nil)
	assert.True(t, dicterr.Is(err, dicterr.TypeMismatch))

	_, err = d.GetColumn(ctx, "value", field.TypeInvalid, nil, nil, nil)
	assert.True(t, dicterr.Is(err, dicterr.BadArguments))

	assert.Equal(t, uint64(0), d.QueryCount(), "failed calls are not counted")
}

func TestGetColumn_CompositeKeyTypeMismatch(t *testing.T) {
	s := labelStructure(t)
	d := newComplex(t, s, memory(t, s, nil))
	ctx := context.Background()

	keys := []column.Column{column.NewStrings("us"), column.UInt64s(1)}

	_, err := d.GetColumn(ctx, "label", field.TypeInvalid, keys, []field.Type{field.TypeString}, nil)
	assert.True(t, dicterr.Is(err, dicterr.TypeMismatch))

	swapped := []column.Column{column.UInt64s(1), column.NewStrings("us")}
	_, err = d.HasKeys(ctx, swapped, nil)
	assert.True(t, dicterr.Is(err, dicterr.TypeMismatch))

	ragged := []column.Column{column.NewStrings("us", "eu"), column.UInt64s(1)}
	_, err = d.HasKeys(ctx, ragged, nil)
	assert.True(t, dicterr.Is(err, dicterr.BadArguments))
}

func TestGetColumn_ConstSimpleKey(t *testing.T) {
	s := valuesStructure(t)
	d := newSimple(t, s, memory(t, s, [][]field.Value{{u(5), u(50), str("five")}}))

	got, err := d.GetColumn(context.Background(), "value", field.TypeUInt64,
		[]column.Column{column.NewConst(field.TypeUInt64, u(5), 3)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{50, 50, 50}, got.(*column.Vector[uint64]).Data())
}

func TestGetColumn_IgnoresRowsPastTheRequest(t *testing.T) {
	names := []string{"id", "value", "name"}
	src := &stubSource{blocks: []*column.Block{
		block(t, names, column.UInt64s(1, 2), column.UInt64s(10, 20), column.NewStrings("a", "b")),
		block(t, names, column.UInt64s(3), column.UInt64s(30), column.NewStrings("c")),
	}}
	d := newSimple(t, valuesStructure(t), src)

	got, err := d.GetColumn(context.Background(), "value", field.TypeInvalid,
		[]column.Column{column.UInt64s(1)}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{10}, got.(*column.Vector[uint64]).Data())

	has, err := d.HasKeys(context.Background(), []column.Column{column.UInt64s(1)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1}, has.Data())
}

func TestGetColumn_NarrowSourceBlock(t *testing.T) {
	src := &stubSource{blocks: []*column.Block{
		block(t, []string{"id", "value"}, column.UInt64s(1), column.UInt64s(10)),
	}}
	d := newSimple(t, valuesStructure(t), src)

	_, err := d.GetColumn(context.Background(), "value", field.TypeInvalid,
		[]column.Column{column.UInt64s(1)}, nil, nil)
	assert.True(t, dicterr.Is(err, dicterr.BadArguments))
}

func TestGetColumn_ReleasesArenaAndStreamOnFailure(t *testing.T) {
	var arenas []*arena.Arena
	orig := newArena
	newArena = func(size int) *arena.Arena {
		a := orig(size)
		arenas = append(arenas, a)
		return a
	}
	t.Cleanup(func() { newArena = orig })

	s := labelStructure(t)
	src := memory(t, s, [][]field.Value{{str("us"), u(1), str("X")}})
	boom := errors.New("connection reset")
	src.ReadErr = boom
	d := newComplex(t, s, src)

	keys := []column.Column{column.NewStrings("us"), column.UInt64s(1)}
	_, err := d.GetColumn(context.Background(), "label", field.TypeInvalid, keys, nil, nil)
	require.ErrorIs(t, err, boom)

	_, err = d.HasKeys(context.Background(), keys, nil)
	require.ErrorIs(t, err, boom)

	require.Len(t, arenas, 2)
	for _, a := range arenas {
		assert.True(t, a.Released())
	}
	assert.Equal(t, int64(0), src.OpenStreams())
	assert.Equal(t, uint64(0), d.QueryCount())
}

// Every requested key gets the source's value when the source has it and
// the default otherwise, in request order.
func TestGetColumn_MatchesReferenceModel(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := valuesStructure(t)

	for round := 0; round < 20; round++ {
		present := make(map[uint64]uint64)
		var rows [][]field.Value
		for id := uint64(0); id < 40; id++ {
			if rng.IntN(2) == 0 {
				present[id] = id * 7
				rows = append(rows, []field.Value{u(id), u(id * 7), str("x")})
			}
		}
		d := newSimple(t, s, memory(t, s, rows, source.WithBlockSize(1+rng.IntN(5))))

		requested := make([]uint64, rng.IntN(30))
		defaults := make([]uint64, len(requested))
		for i := range requested {
			requested[i] = uint64(rng.IntN(45))
			defaults[i] = 1000 + uint64(i)
		}

		keys := []column.Column{column.UInt64s(requested...)}
		got, err := d.GetColumn(context.Background(), "value", field.TypeInvalid, keys, nil, column.UInt64s(defaults...))
		require.NoError(t, err)
		has, err := d.HasKeys(context.Background(), keys, nil)
		require.NoError(t, err)

		again, err := d.GetColumn(context.Background(), "value", field.TypeInvalid, keys, nil, column.UInt64s(defaults...))
		require.NoError(t, err)
		assert.Equal(t, column.Values(got), column.Values(again), "lookups are idempotent")

		data := got.(*column.Vector[uint64]).Data()
		require.Len(t, data, len(requested))
		for i, id := range requested {
			if v, ok := present[id]; ok {
				assert.Equal(t, v, data[i], "round %d row %d", round, i)
				assert.Equal(t, uint8(1), has.Data()[i])
			} else {
				assert.Equal(t, defaults[i], data[i], "round %d row %d", round, i)
				assert.Equal(t, uint8(0), has.Data()[i])
			}
		}
	}
}

func TestQueryCount_ConcurrentCalls(t *testing.T) {
	s := valuesStructure(t)
	src := memory(t, s, [][]field.Value{{u(1), u(10), str("one")}})
	d := newSimple(t, s, src)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 50; i++ {
				got, err := d.GetColumn(context.Background(), "value", field.TypeInvalid,
					[]column.Column{column.UInt64s(1, 2, 1)}, nil, nil)
				if err != nil {
					return err
				}
				if data := got.(*column.Vector[uint64]).Data(); data[0] != 10 || data[1] != 0 || data[2] != 10 {
					return errors.New("unexpected lookup result")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, uint64(8*50*3), d.QueryCount())
	assert.Equal(t, int64(0), src.OpenStreams())
}

func TestBlockStream_DelegatesToLoadAll(t *testing.T) {
	s := valuesStructure(t)
	src := memory(t, s, [][]field.Value{{u(1), u(10), str("one")}, {u(2), u(20), str("two")}})
	d := newSimple(t, s, src)

	st, err := d.BlockStream(context.Background(), []string{"ignored"}, 1)
	require.NoError(t, err)
	b, err := st.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, b.Rows())
	require.NoError(t, st.Close())

	assert.Equal(t, int64(1), src.LoadAllCalls())
	assert.Equal(t, uint64(0), d.QueryCount())
}
