package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForIntegers(t *testing.T) {
	tests := []struct {
		kind     Kind
		min, max string
	}{
		{Int8, "-128", "127"},
		{Int16, "-32768", "32767"},
		{Int32, "-2147483648", "2147483647"},
		{Int64, "-9223372036854775808", "9223372036854775807"},
		{Uint8, "0", "255"},
		{Uint16, "0", "65535"},
		{Uint32, "0", "4294967295"},
		{Uint64, "0", "18446744073709551615"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s := For(tt.kind)
			assert.Equal(t, TypeInteger, s.Type)
			assert.Equal(t, json.Number(tt.min), s.Minimum)
			assert.Equal(t, json.Number(tt.max), s.Maximum)
		})
	}
}

func TestForPlatformWidth(t *testing.T) {
	s := For(Int)
	if strconv.IntSize == 64 {
		assert.Equal(t, json.Number("9223372036854775807"), s.Maximum)
	} else {
		assert.Equal(t, json.Number("2147483647"), s.Maximum)
	}
	assert.Equal(t, json.Number(strconv.FormatInt(math.MinInt, 10)), s.Minimum)

	u := For(Uint)
	assert.Equal(t, json.Number("0"), u.Minimum)
	assert.Equal(t, json.Number(strconv.FormatUint(math.MaxUint, 10)), u.Maximum)
}

func TestForFloats(t *testing.T) {
	f32 := For(Float32)
	assert.Equal(t, TypeNumber, f32.Type)
	assert.Equal(t, json.Number("-3.4028235e+38"), f32.Minimum)
	assert.Equal(t, json.Number("3.4028235e+38"), f32.Maximum)

	f64 := For(Float64)
	assert.Equal(t, json.Number("-1.7976931348623157e+308"), f64.Minimum)
	assert.Equal(t, json.Number("1.7976931348623157e+308"), f64.Maximum)
}

func TestForBoolAndString(t *testing.T) {
	assert.Equal(t, `{"type":"boolean"}`, marshal(t, For(Bool)))
	assert.Equal(t, `{"type":"string"}`, marshal(t, For(String)))
}

func TestForExactWireBounds(t *testing.T) {
	assert.Equal(t,
		`{"type":"integer","minimum":0,"maximum":18446744073709551615}`,
		marshal(t, For(Uint64)),
	)
}

func TestForIsPure(t *testing.T) {
	for _, k := range Kinds() {
		a, b := For(k), For(k)
		assert.NotSame(t, a, b)
		assert.True(t, Equal(a, b), k.String())
	}
}

func TestForUnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() { For(Kind(0)) })
}

func TestLookupKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := LookupKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}

	k, ok := LookupKind("byte")
	assert.True(t, ok)
	assert.Equal(t, Uint8, k)

	k, ok = LookupKind("rune")
	assert.True(t, ok)
	assert.Equal(t, Int32, k)

	_, ok = LookupKind("complex128")
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("integer")
	require.NoError(t, err)
	assert.Equal(t, Int64, k)

	k, err = ParseKind(" Number ")
	require.NoError(t, err)
	assert.Equal(t, Float64, k)

	k, err = ParseKind("string")
	require.NoError(t, err)
	assert.Equal(t, String, k)

	_, err = ParseKind("date")
	assert.Error(t, err)
}

func TestKindGoName(t *testing.T) {
	assert.Equal(t, "Uint8", Uint8.GoName())
	assert.Equal(t, "Uintptr", Uintptr.GoName())
	assert.Equal(t, "String", String.GoName())
	assert.Equal(t, "", Kind(99).GoName())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
