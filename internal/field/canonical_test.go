package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"zebra": 1,
		"apple": "x",
		"mango": []any{true, nil},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apple":"x","mango":[true,null],"zebra":1}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	got, err := MarshalCanonical("<a&b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" followed by a combining acute accent normalizes to a single code point.
	got, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_FieldValues(t *testing.T) {
	got, err := MarshalCanonical([]Value{UInt64(100), Int64(-1), Float64(2.5), String("X"), Null{}})
	require.NoError(t, err)
	assert.Equal(t, `[100,-1,2.5,"X",null]`, string(got))

	got, err = MarshalCanonical([]bool{true, false})
	require.NoError(t, err)
	assert.Equal(t, `[true,false]`, string(got))

	got, err = MarshalCanonical([]uint64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, `[2,3]`, string(got))
}

func TestMarshalCanonical_BoolSlices(t *testing.T) {
	for _, tc := range []struct {
		in   []bool
		want string
	}{
		{nil, `[]`},
		{[]bool{false}, `[false]`},
		{[]bool{true, true, false}, `[true,true,false]`},
	} {
		got, err := MarshalCanonical(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(got))
	}
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(math.NaN())
	assert.Error(t, err)
	_, err = MarshalCanonical(Float64(math.Inf(1)))
	assert.Error(t, err)
}

func TestCompareKeysUTF16(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts before U+FFFF in UTF-16.
	assert.Equal(t, -1, compareKeysUTF16("\U00010000", "\uffff"))
	assert.Equal(t, 0, compareKeysUTF16("a", "a"))
	assert.Equal(t, -1, compareKeysUTF16("a", "ab"))
}
