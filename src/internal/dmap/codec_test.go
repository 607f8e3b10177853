package dmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.Register("miid", "dmap.itemid", KindUint32)
	reg.Register("minm", "dmap.itemname", KindString)
	reg.Register("mper", "dmap.persistentid", KindUint64)
	reg.Register("mlit", "dmap.listingitem", KindContainer)
	reg.Register("mpro", "dmap.protocolversion", KindVersion)
	reg.Register("mstm", "dmap.starttime", KindTimestamp)

	now := time.Unix(1_700_000_000, 0).UTC()
	n := Container("mlit",
		U32("miid", 42),
		Str("minm", "Track Title"),
		U64("mper", 1<<40),
		Ver("mpro", 2, 0),
		Time("mstm", now),
	)

	encoded := Encode(n)
	decoded, err := Decode(encoded, reg)
	require.NoError(t, err)

	require.Equal(t, n.Code, decoded.Code)
	require.Len(t, decoded.Children, len(n.Children))
	assert.Equal(t, uint64(42), decoded.Children[0].UInt)
	assert.Equal(t, "Track Title", decoded.Children[1].Str)
	assert.Equal(t, uint64(1<<40), decoded.Children[2].UInt)
	assert.Equal(t, Version{Major: 2, Minor: 0}, decoded.Children[3].Ver)
	assert.True(t, now.Equal(decoded.Children[4].Time))
}

func TestEncodedLengthInvariant(t *testing.T) {
	n := Container("mlcl",
		U32("miid", 1),
		U32("miid", 2),
		Container("mlit", Str("minm", "x")),
	)
	encoded := Encode(n)
	assert.Equal(t, len(encoded), 8+encodedBodyLen(n))
}

func encodedBodyLen(n Node) int {
	total := 0
	for _, c := range n.Children {
		total += len(Encode(c))
	}
	return total
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{'m', 'i'}, NewRegistry())
	assert.Error(t, err)
}

func TestDecodeRejectsContainerLengthMismatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("mlit", "dmap.listingitem", KindContainer)
	reg.Register("miid", "dmap.itemid", KindUint32)

	child := Encode(U32("miid", 7))
	// declare a length one byte short of the real child encoding
	header := append([]byte("mlit"), 0, 0, 0, byte(len(child)-1))
	bad := append(header, child...)

	_, err := Decode(bad, reg)
	assert.Error(t, err)
}

func TestDecodeUnknownCodeDegradesToBytes(t *testing.T) {
	reg := NewRegistry()
	n := Str("xxxx", "hello")
	decoded, err := Decode(Encode(n), reg)
	require.NoError(t, err)
	assert.Equal(t, KindBytes, decoded.Kind)
	assert.Equal(t, []byte("hello"), decoded.Raw)
}

func TestPad4TruncatesAndPads(t *testing.T) {
	assert.Equal(t, "asdf", pad4("asdf"))
	assert.Equal(t, "asdf", pad4("asdfgh"))
	assert.Equal(t, "ab  ", pad4("ab"))
}

func TestIntegerKindWidths(t *testing.T) {
	cases := []struct {
		name string
		n    Node
		want int
	}{
		{"u8", U8("xxxx", 1), 1},
		{"u16", U16("xxxx", 1), 2},
		{"u32", U32("xxxx", 1), 4},
		{"u64", U64("xxxx", 1), 8},
		{"i8", I8("xxxx", -1), 1},
		{"i16", I16("xxxx", -1), 2},
		{"i32", I32("xxxx", -1), 4},
		{"i64", I64("xxxx", -1), 8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded := Encode(c.n)
			assert.Len(t, encoded, 8+c.want)
		})
	}
}
