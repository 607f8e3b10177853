// Package daap builds the canonical DMAP response trees for each DAAP
// endpoint and routes incoming requests to the handler that builds
// them. One function per response kind, each assembling a fixed field
// set into a single return value.
package daap

import (
	l "github.com/sirupsen/logrus"

	"gitlab.com/mipimipi/daapd/src/internal/dmap"
	"gitlab.com/mipimipi/daapd/src/internal/library"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "daap"})

// ProtocolVersion is the DAAP protocol version this server speaks.
var ProtocolVersion = dmap.Version{Major: 3, Minor: 12}

// DMAPVersion is the DMAP protocol version this server speaks.
var DMAPVersion = dmap.Version{Major: 2, Minor: 0}

// ServerInfo holds the static fields reported at /server-info.
type ServerInfo struct {
	Name           string
	AuthMethod     string // "none" / "password" / "user_and_password"
	TimeoutSeconds uint32
	DatabaseCount  uint32
}

// BuildServerInfo builds the /server-info response tree.
func BuildServerInfo(info ServerInfo) dmap.Node {
	authMethod := uint8(0)
	switch info.AuthMethod {
	case "password":
		authMethod = 1
	case "user_and_password":
		authMethod = 2
	}
	return dmap.Container("msrv",
		dmap.U32("mstt", 200),
		dmap.Ver("mpro", DMAPVersion.Major, DMAPVersion.Minor),
		dmap.Ver("apro", ProtocolVersion.Major, ProtocolVersion.Minor),
		dmap.Str("minm", info.Name),
		dmap.U8("msau", authMethod),
		dmap.U32("mstm", info.TimeoutSeconds),
		dmap.U32("msdc", info.DatabaseCount),
		dmap.U8("msal", 1),
		dmap.U8("msup", 1),
		dmap.U8("mspi", 1),
		dmap.U8("msex", 1),
		dmap.U8("msix", 1),
		dmap.U8("msbr", 1),
		dmap.U8("msqy", 1),
		dmap.U8("msrs", 1),
	)
}

// BuildContentCodes builds the /content-codes response tree enumerating
// every code in reg.
func BuildContentCodes(reg *dmap.Registry) dmap.Node {
	var dicts []dmap.Node
	for _, code := range reg.Codes() {
		name, _ := reg.Name(code)
		kind, _ := reg.Kind(code)
		dicts = append(dicts, dmap.Container("mdcl",
			dmap.Str("mcnm", code),
			dmap.Str("mcna", name),
			dmap.U16("mcty", uint16(kind)),
		))
	}
	return dmap.Container("mccr",
		append([]dmap.Node{dmap.U32("mstt", 200)}, dicts...)...,
	)
}

// BuildLogin builds the /login response tree.
func BuildLogin(sessionID uint32) dmap.Node {
	return dmap.Container("mlog",
		dmap.U32("mstt", 200),
		dmap.U32("mlid", sessionID),
	)
}

// BuildUpdate builds the /update response tree.
func BuildUpdate(revision int) dmap.Node {
	return dmap.Container("mupd",
		dmap.U32("mstt", 200),
		dmap.U32("musr", uint32(revision)),
	)
}

// BuildDatabases builds the /databases response tree: exactly one
// database entry, per the single-database Non-goal.
func BuildDatabases(dbID uint32, dbName string, trackCount int) dmap.Node {
	entry := dmap.Container("mlit",
		dmap.U32("miid", dbID),
		dmap.Str("minm", dbName),
		dmap.U32("mimc", uint32(trackCount)),
	)
	return dmap.Container("avdb",
		dmap.U32("mstt", 200),
		dmap.U8("muty", 0),
		dmap.U32("mtco", 1),
		dmap.U32("mrco", 1),
		dmap.Container("mlcl", entry),
	)
}

// MetaSelection is the parsed, comma-separated `meta` query parameter.
// An empty selection means "all known fields".
type MetaSelection map[string]bool

// ParseMeta splits a `meta` query value into a MetaSelection.
func ParseMeta(raw string) MetaSelection {
	if raw == "" {
		return nil
	}
	sel := make(MetaSelection)
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if i > start {
				sel[raw[start:i]] = true
			}
			start = i + 1
		}
	}
	return sel
}

func (sel MetaSelection) wants(name string) bool {
	return len(sel) == 0 || sel[name]
}

// trackNode builds a single mlit node for t, including only the fields
// selected by sel. Unknown names in sel are silently ignored since they
// simply never match a field name here.
func trackNode(t library.Track, sel MetaSelection) dmap.Node {
	var children []dmap.Node
	if sel.wants("dmap.itemid") {
		children = append(children, dmap.U32("miid", t.ItemID))
	}
	if sel.wants("dmap.itemname") {
		children = append(children, dmap.Str("minm", t.Title))
	}
	if sel.wants("daap.songalbum") {
		children = append(children, dmap.Str("asal", t.Album))
	}
	if sel.wants("daap.songartist") {
		children = append(children, dmap.Str("asar", t.Artist))
	}
	if sel.wants("daap.songgenre") {
		children = append(children, dmap.Str("asgn", t.Genre))
	}
	if sel.wants("daap.songtracknumber") {
		children = append(children, dmap.U16("astn", t.TrackNum))
	}
	if sel.wants("daap.songdiscnumber") {
		children = append(children, dmap.U16("asdn", t.DiscNum))
	}
	if sel.wants("daap.songtime") {
		children = append(children, dmap.U32("astm", t.Duration))
	}
	if sel.wants("daap.songformat") {
		children = append(children, dmap.Str("asfm", t.Format))
	}
	if sel.wants("daap.songcodectype") {
		children = append(children, dmap.Str("ascd", t.CodecType))
	}
	if sel.wants("daap.songbitrate") {
		children = append(children, dmap.U16("asbr", t.Bitrate))
	}
	if sel.wants("daap.songalbumid") {
		children = append(children, dmap.U64("asai", t.AlbumID))
	}
	return dmap.Container("mlit", children...)
}

// BuildTrackListing builds /databases/{db}/items: either a full listing
// (updateType=0, all of tracks) or a delta listing (updateType=1,
// tracks plus deletedIDs as an mudl child).
func BuildTrackListing(tracks []library.Track, sel MetaSelection, delta bool, deletedIDs []uint32) dmap.Node {
	var items []dmap.Node
	for _, t := range tracks {
		items = append(items, trackNode(t, sel))
	}

	updateType := uint8(0)
	if delta {
		updateType = 1
	}

	children := []dmap.Node{
		dmap.U32("mstt", 200),
		dmap.U8("muty", updateType),
		dmap.U32("mtco", uint32(len(tracks))),
		dmap.U32("mrco", uint32(len(tracks))),
		dmap.Container("mlcl", items...),
	}
	if delta {
		var delIDs []dmap.Node
		for _, id := range deletedIDs {
			delIDs = append(delIDs, dmap.U32("miid", id))
		}
		children = append(children, dmap.Container("mudl", delIDs...))
	}
	return dmap.Container("adbs", children...)
}

// BuildPlaylists builds /databases/{db}/containers.
func BuildPlaylists(playlists []library.Playlist) dmap.Node {
	var items []dmap.Node
	for _, p := range playlists {
		children := []dmap.Node{
			dmap.U32("miid", p.PlaylistID),
			dmap.Str("minm", p.Name),
			dmap.U32("mimc", uint32(len(p.Entries))),
		}
		if p.PlaylistID == 1 {
			children = append(children, dmap.U8("abpl", 1))
		}
		items = append(items, dmap.Container("mlit", children...))
	}
	return dmap.Container("aply",
		dmap.U32("mstt", 200),
		dmap.U8("muty", 0),
		dmap.U32("mtco", uint32(len(playlists))),
		dmap.U32("mrco", uint32(len(playlists))),
		dmap.Container("mlcl", items...),
	)
}

// BuildPlaylistItems builds /databases/{db}/containers/{pl}/items: the
// entry listing (item id + container id per entry), and for deltas, a
// deletion listing of removed item ids.
func BuildPlaylistItems(entries []library.PlaylistEntry, delta bool, removedIDs []uint32) dmap.Node {
	var items []dmap.Node
	for _, e := range entries {
		items = append(items, dmap.Container("mlit",
			dmap.U32("miid", e.ItemID),
			dmap.U32("mcti", e.ContainerID),
		))
	}

	updateType := uint8(0)
	if delta {
		updateType = 1
	}

	children := []dmap.Node{
		dmap.U32("mstt", 200),
		dmap.U8("muty", updateType),
		dmap.U32("mtco", uint32(len(entries))),
		dmap.U32("mrco", uint32(len(entries))),
		dmap.Container("mlcl", items...),
	}
	if delta {
		var delIDs []dmap.Node
		for _, id := range removedIDs {
			delIDs = append(delIDs, dmap.U32("miid", id))
		}
		children = append(children, dmap.Container("mudl", delIDs...))
	}
	return dmap.Container("apso", children...)
}

// groupKeyFunc extracts the grouping key (album or artist name) from a
// track, for BuildGroups.
type groupKeyFunc func(library.Track) string

// BuildGroups builds the supplemented /databases/{db}/groups response:
// a read-only grouping view over the same tracks already served by
// /databases/{db}/items, keyed by either album or artist name. code
// selects the top-level content code ("agal" for albums, "agar" for
// artists).
func BuildGroups(code string, tracks []library.Track, key groupKeyFunc) dmap.Node {
	order := make([]string, 0)
	members := make(map[string][]library.Track)
	for _, t := range tracks {
		k := key(t)
		if _, ok := members[k]; !ok {
			order = append(order, k)
		}
		members[k] = append(members[k], t)
	}

	var items []dmap.Node
	for _, k := range order {
		items = append(items, dmap.Container("mlit",
			dmap.Str("minm", k),
			dmap.U32("mimc", uint32(len(members[k]))),
		))
	}
	return dmap.Container(code,
		dmap.U32("mstt", 200),
		dmap.U8("muty", 0),
		dmap.U32("mtco", uint32(len(order))),
		dmap.U32("mrco", uint32(len(order))),
		dmap.Container("mlcl", items...),
	)
}

// GroupByAlbum extracts a track's album name for grouping.
func GroupByAlbum(t library.Track) string { return t.Album }

// GroupByArtist extracts a track's artist name for grouping.
func GroupByArtist(t library.Track) string { return t.Artist }
