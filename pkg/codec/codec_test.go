package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	build := func() []byte {
		return NewEncoder(Version1).
			StringField(1, "Draft").
			Field(2, []byte("payload")).
			SequenceField(3, [][]byte{[]byte("p1"), []byte("p2")}).
			TimeField(4, ts).
			Bytes()
	}

	a := build()
	b := build()
	require.Equal(t, a, b)
	require.Equal(t, ComputeHash(a), ComputeHash(b))
}

func TestHashSensitiveToFieldOrder(t *testing.T) {
	a := NewEncoder(Version1).StringField(1, "x").StringField(2, "y").Bytes()
	b := NewEncoder(Version1).StringField(2, "y").StringField(1, "x").Bytes()
	require.NotEqual(t, a, b)
}

func TestSequenceFieldOrderSensitive(t *testing.T) {
	a := NewEncoder(Version1).SequenceField(1, [][]byte{[]byte("a"), []byte("b")}).Bytes()
	b := NewEncoder(Version1).SequenceField(1, [][]byte{[]byte("b"), []byte("a")}).Bytes()
	require.NotEqual(t, a, b)
}

func TestSortedMapFieldOrderIndependent(t *testing.T) {
	m1 := map[string]string{"z": "1", "a": "2"}
	m2 := map[string]string{"a": "2", "z": "1"}
	a := NewEncoder(Version1).SortedMapField(1, m1).Bytes()
	b := NewEncoder(Version1).SortedMapField(1, m2).Bytes()
	require.Equal(t, a, b)
}

func TestFloat64FieldUsesBitPattern(t *testing.T) {
	a := NewEncoder(Version1).Float64Field(1, 0.85).Bytes()
	b := NewEncoder(Version1).Float64Field(1, 0.85).Bytes()
	require.Equal(t, a, b)

	c := NewEncoder(Version1).Float64Field(1, 0.86).Bytes()
	require.NotEqual(t, a, c)
}

func TestVerifyHash(t *testing.T) {
	b := NewEncoder(Version1).StringField(1, "hello").Bytes()
	h := ComputeHash(b)
	require.True(t, VerifyHash(b, h))
	require.False(t, VerifyHash(b, "deadbeef"))
}
