// Package library defines the adapter interface the protocol core
// consumes. The core never reaches past this interface: no file-system
// scanning, tag extraction, or artwork decoding lives here or anywhere
// else in this module.
package library

import "io"

// Track is an opaque entity produced by the adapter. ItemID is stable
// across revisions and reused only after a library restart.
type Track struct {
	ItemID    uint32
	Title     string
	Artist    string
	Album     string
	Genre     string
	TrackNum  uint16
	DiscNum   uint16
	Duration  uint32 // milliseconds
	Format    string // file extension, e.g. "mp3"
	CodecType string
	Bitrate   uint16
	AlbumID   uint64
	Locator   string // opaque token the adapter can reopen
	HasArt    bool
}

// PlaylistEntry pairs a track with the playlist-local container id
// assigned to its membership in that playlist.
type PlaylistEntry struct {
	ItemID      uint32
	ContainerID uint32
}

// Playlist is a numeric id, a name, and an ordered entry list. Id 1 is
// reserved for the base "all tracks" container.
type Playlist struct {
	PlaylistID uint32
	Name       string
	Entries    []PlaylistEntry
}

// TrackIDs returns the ordered item ids backing this playlist, the
// authoritative sequence the playlist diff engine refreshes against.
func (p Playlist) TrackIDs() []uint32 {
	ids := make([]uint32, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.ItemID
	}
	return ids
}

// Library is the capability set the protocol core calls on the music
// adapter, and nothing else.
type Library interface {
	DatabaseID() uint32
	DatabaseName() string

	IterTracks() []Track
	LookupTrack(id uint32) (Track, bool)

	IterPlaylists() []Playlist
	LookupPlaylist(id uint32) (Playlist, bool)

	// OpenAudio returns a readable stream positioned at offset 0 and the
	// total length in bytes of track's audio data.
	OpenAudio(t Track) (io.ReadCloser, int64, error)

	// GetArtwork returns artwork bytes and a MIME subtype (e.g. "jpeg"),
	// or ok=false if the track has no artwork.
	GetArtwork(t Track) (data []byte, mime string, ok bool)

	// SubscribeChanges registers callback to be invoked whenever the
	// library mutates. The core treats invocation as arbitrary and
	// non-reentrant with respect to itself.
	SubscribeChanges(callback func())
}
