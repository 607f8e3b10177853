package daap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/mipimipi/daapd/src/internal/dmap"
	"gitlab.com/mipimipi/daapd/src/internal/library"
)

func TestBuildServerInfoFields(t *testing.T) {
	n := BuildServerInfo(ServerInfo{Name: "Test", AuthMethod: "none", DatabaseCount: 1})
	reg := dmap.DefaultRegistry()
	decoded, err := dmap.Decode(dmap.Encode(n), reg)
	require.NoError(t, err)

	var gotName string
	var gotCount uint64
	for _, c := range decoded.Children {
		switch c.Code {
		case "minm":
			gotName = c.Str
		case "msdc":
			gotCount = c.UInt
		}
	}
	assert.Equal(t, "Test", gotName)
	assert.EqualValues(t, 1, gotCount)
}

func TestBuildContentCodesListsKnownCodes(t *testing.T) {
	reg := dmap.DefaultRegistry()
	n := BuildContentCodes(reg)
	codes := map[string]bool{}
	for _, dict := range n.Children {
		if dict.Code != "mdcl" {
			continue
		}
		for _, f := range dict.Children {
			if f.Code == "mcnm" {
				codes[f.Str] = true
			}
		}
	}
	for _, want := range []string{"miid", "minm", "mstt"} {
		assert.True(t, codes[want], "content-codes missing %q", want)
	}
}

func TestBuildTrackListingFullVsDelta(t *testing.T) {
	tracks := []library.Track{
		{ItemID: 1, Title: "a"},
		{ItemID: 3, Title: "c"},
	}
	full := BuildTrackListing(tracks, nil, false, nil)
	assert.Equal(t, "adbs", full.Code)
	for _, c := range full.Children {
		if c.Code == "muty" {
			assert.EqualValues(t, 0, c.UInt)
		}
		if c.Code == "mtco" {
			assert.EqualValues(t, 2, c.UInt)
		}
	}

	delta := BuildTrackListing(tracks, nil, true, []uint32{2})
	var sawMudl bool
	for _, c := range delta.Children {
		if c.Code == "muty" {
			assert.EqualValues(t, 1, c.UInt)
		}
		if c.Code == "mudl" {
			sawMudl = true
			require.Len(t, c.Children, 1)
			assert.EqualValues(t, 2, c.Children[0].UInt)
		}
	}
	assert.True(t, sawMudl)
}

func TestParseMetaSelectsFields(t *testing.T) {
	sel := ParseMeta("dmap.itemid,dmap.itemname")
	assert.True(t, sel.wants("dmap.itemid"))
	assert.True(t, sel.wants("dmap.itemname"))
	assert.False(t, sel.wants("daap.songalbum"))

	var empty MetaSelection
	assert.True(t, empty.wants("anything"))
}

func TestTrackNodeRespectsMetaSelection(t *testing.T) {
	tr := library.Track{ItemID: 1, Title: "Song", Album: "Album"}
	sel := ParseMeta("dmap.itemid")
	n := trackNode(tr, sel)
	require.Len(t, n.Children, 1)
	assert.Equal(t, "miid", n.Children[0].Code)
}

func TestBuildGroupsByAlbum(t *testing.T) {
	tracks := []library.Track{
		{ItemID: 1, Album: "A"},
		{ItemID: 2, Album: "A"},
		{ItemID: 3, Album: "B"},
	}
	n := BuildGroups("agal", tracks, GroupByAlbum)
	assert.Equal(t, "agal", n.Code)
	var count int
	for _, c := range n.Children {
		if c.Code == "mtco" {
			count = int(c.UInt)
		}
	}
	assert.Equal(t, 2, count)
}
