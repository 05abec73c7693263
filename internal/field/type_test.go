package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for typ, name := range typeNames {
		t.Run(name, func(t *testing.T) {
			parsed, err := ParseType(name)
			require.NoError(t, err)
			assert.Equal(t, typ, parsed)
		})
	}

	parsed, err := ParseType("uint64")
	require.NoError(t, err)
	assert.Equal(t, TypeUInt64, parsed)

	_, err = ParseType("Decimal128")
	assert.Error(t, err)
}

func TestTypeUnmarshalText(t *testing.T) {
	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("String")))
	assert.Equal(t, TypeString, typ)
	assert.Error(t, typ.UnmarshalText([]byte("Nope")))
}

func TestTypeSize(t *testing.T) {
	assert.Equal(t, 1, TypeUInt8.Size())
	assert.Equal(t, 2, TypeInt16.Size())
	assert.Equal(t, 4, TypeFloat32.Size())
	assert.Equal(t, 8, TypeUInt64.Size())
	assert.Equal(t, 0, TypeString.Size())
}

func TestTypeZero(t *testing.T) {
	assert.Equal(t, UInt64(0), TypeUInt8.Zero())
	assert.Equal(t, Int64(0), TypeInt32.Zero())
	assert.Equal(t, Float64(0), TypeFloat64.Zero())
	assert.Equal(t, String(""), TypeString.Zero())
	assert.Equal(t, Null{}, TypeInvalid.Zero())
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		in      Value
		want    Value
		wantErr bool
	}{
		{"uint64 passthrough", TypeUInt64, UInt64(7), UInt64(7), false},
		{"int to uint", TypeUInt64, Int64(7), UInt64(7), false},
		{"negative to uint", TypeUInt64, Int64(-1), nil, true},
		{"uint8 overflow", TypeUInt8, UInt64(256), nil, true},
		{"uint8 fits", TypeUInt8, UInt64(255), UInt64(255), false},
		{"integral float to uint", TypeUInt32, Float64(3), UInt64(3), false},
		{"fractional float to uint", TypeUInt32, Float64(3.5), nil, true},
		{"string to uint", TypeUInt64, String("42"), UInt64(42), false},
		{"bad string to uint", TypeUInt64, String("x"), nil, true},
		{"uint to int", TypeInt64, UInt64(5), Int64(5), false},
		{"int8 underflow", TypeInt8, Int64(-129), nil, true},
		{"huge uint to int", TypeInt64, UInt64(1 << 63), nil, true},
		{"int to float", TypeFloat64, Int64(-2), Float64(-2), false},
		{"float32 rounding", TypeFloat32, Float64(0.1), Float64(float32(0.1)), false},
		{"string", TypeString, String("us"), String("us"), false},
		{"number to string", TypeString, UInt64(1), nil, true},
		{"null never converts", TypeUInt64, Null{}, nil, true},
		{"invalid target", TypeInvalid, UInt64(1), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.Convert(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
