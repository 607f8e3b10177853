// Package memory is an in-memory reference library adapter: test
// scaffolding for the protocol core and the backing store for
// `daapd run --demo`. It carries none of a real adapter's file
// scanning, tag extraction, or picture resizing.
package memory

import (
	"sync"
)

// Library is an in-memory library.Library implementation. Zero value is
// not usable; use New.
type Library struct {
	mu sync.Mutex

	dbID   uint32
	dbName string

	tracks    map[uint32]trackRecord
	playlists map[uint32]playlistRecord

	callbacks []func()
}

type trackRecord struct {
	title, artist, album, genre string
	trackNum, discNum           uint16
	duration                    uint32
	format, codecType           string
	bitrate                     uint16
	albumID                     uint64
	data                        []byte
	art                         []byte
	artMime                     string
}

type playlistRecord struct {
	name    string
	trackIDs []uint32
}

// New creates an empty library named name with database id dbID.
func New(dbID uint32, name string) *Library {
	return &Library{
		dbID:      dbID,
		dbName:    name,
		tracks:    make(map[uint32]trackRecord),
		playlists: make(map[uint32]playlistRecord),
	}
}

// DatabaseID returns the single database's id
func (l *Library) DatabaseID() uint32 { return l.dbID }

// DatabaseName returns the single database's name
func (l *Library) DatabaseName() string { return l.dbName }

// AddTrack inserts or replaces a track's metadata and audio bytes.
// Adding a track to the base playlist (id 1) happens automatically: the
// base playlist always enumerates every track, in ascending item-id
// order.
func (l *Library) AddTrack(itemID uint32, t Track) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracks[itemID] = trackRecord{
		title: t.Title, artist: t.Artist, album: t.Album, genre: t.Genre,
		trackNum: t.TrackNum, discNum: t.DiscNum, duration: t.Duration,
		format: t.Format, codecType: t.CodecType, bitrate: t.Bitrate,
		albumID: t.AlbumID, data: t.Data, art: t.Artwork, artMime: t.ArtworkMime,
	}
	l.notify()
}

// RemoveTrack deletes a track by item id, from every playlist's entries
// as well as the track table.
func (l *Library) RemoveTrack(itemID uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.tracks, itemID)
	for id, pl := range l.playlists {
		filtered := pl.trackIDs[:0:0]
		for _, tid := range pl.trackIDs {
			if tid != itemID {
				filtered = append(filtered, tid)
			}
		}
		pl.trackIDs = filtered
		l.playlists[id] = pl
	}
	l.notify()
}

// SetPlaylist creates or replaces a playlist's ordered track membership.
// Playlist id 1 is reserved for the base playlist and is managed
// automatically; SetPlaylist on id 1 is ignored.
func (l *Library) SetPlaylist(id uint32, name string, trackIDs []uint32) {
	if id == 1 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playlists[id] = playlistRecord{name: name, trackIDs: append([]uint32(nil), trackIDs...)}
	l.notify()
}

// RemovePlaylist deletes a non-base playlist.
func (l *Library) RemovePlaylist(id uint32) {
	if id == 1 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.playlists, id)
	l.notify()
}

func (l *Library) notify() {
	for _, cb := range l.callbacks {
		cb := cb
		go cb()
	}
}

// Track is the caller-facing shape for AddTrack, kept separate from the
// wire-facing library.Track so callers don't have to know about
// ItemID/Entries bookkeeping.
type Track struct {
	Title, Artist, Album, Genre string
	TrackNum, DiscNum           uint16
	Duration                    uint32
	Format, CodecType           string
	Bitrate                     uint16
	AlbumID                     uint64
	Data                        []byte
	Artwork                     []byte
	ArtworkMime                 string
}
