package memory

import (
	"bytes"
	"io"
	"sort"

	"github.com/pkg/errors"

	"gitlab.com/mipimipi/daapd/src/internal/library"
)

// IterTracks returns every track, ordered by ascending item id.
func (l *Library) IterTracks() []library.Track {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]uint32, 0, len(l.tracks))
	for id := range l.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]library.Track, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.toTrack(id, l.tracks[id]))
	}
	return out
}

// LookupTrack returns a single track by item id.
func (l *Library) LookupTrack(id uint32) (library.Track, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.tracks[id]
	if !ok {
		return library.Track{}, false
	}
	return l.toTrack(id, r), true
}

func (l *Library) toTrack(id uint32, r trackRecord) library.Track {
	return library.Track{
		ItemID:    id,
		Title:     r.title,
		Artist:    r.artist,
		Album:     r.album,
		Genre:     r.genre,
		TrackNum:  r.trackNum,
		DiscNum:   r.discNum,
		Duration:  r.duration,
		Format:    r.format,
		CodecType: r.codecType,
		Bitrate:   r.bitrate,
		AlbumID:   r.albumID,
		Locator:   "mem",
		HasArt:    len(r.art) > 0,
	}
}

// IterPlaylists returns every playlist, the base playlist (id 1, all
// tracks in ascending item-id order) first, followed by user playlists
// ordered by ascending playlist id.
func (l *Library) IterPlaylists() []library.Playlist {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []library.Playlist{l.basePlaylist()}

	ids := make([]uint32, 0, len(l.playlists))
	for id := range l.playlists {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out = append(out, l.userPlaylist(id, l.playlists[id]))
	}
	return out
}

// LookupPlaylist returns a single playlist by id, including the base
// playlist (id 1).
func (l *Library) LookupPlaylist(id uint32) (library.Playlist, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == 1 {
		return l.basePlaylist(), true
	}
	r, ok := l.playlists[id]
	if !ok {
		return library.Playlist{}, false
	}
	return l.userPlaylist(id, r), true
}

func (l *Library) basePlaylist() library.Playlist {
	ids := make([]uint32, 0, len(l.tracks))
	for id := range l.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]library.PlaylistEntry, len(ids))
	for i, id := range ids {
		entries[i] = library.PlaylistEntry{ItemID: id, ContainerID: id}
	}
	return library.Playlist{PlaylistID: 1, Name: "Library", Entries: entries}
}

func (l *Library) userPlaylist(id uint32, r playlistRecord) library.Playlist {
	entries := make([]library.PlaylistEntry, len(r.trackIDs))
	for i, tid := range r.trackIDs {
		entries[i] = library.PlaylistEntry{ItemID: tid, ContainerID: uint32(i + 1)}
	}
	return library.Playlist{PlaylistID: id, Name: r.name, Entries: entries}
}

// OpenAudio returns a reader over the in-memory audio bytes recorded for
// t's item id.
func (l *Library) OpenAudio(t library.Track) (io.ReadCloser, int64, error) {
	l.mu.Lock()
	r, ok := l.tracks[t.ItemID]
	l.mu.Unlock()
	if !ok {
		return nil, 0, errors.Errorf("memory: no such track %d", t.ItemID)
	}
	return io.NopCloser(bytes.NewReader(r.data)), int64(len(r.data)), nil
}

// GetArtwork returns the artwork bytes recorded for t's item id, if any.
func (l *Library) GetArtwork(t library.Track) ([]byte, string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.tracks[t.ItemID]
	if !ok || len(r.art) == 0 {
		return nil, "", false
	}
	return r.art, r.artMime, true
}

// SubscribeChanges registers callback for invocation on every mutation.
func (l *Library) SubscribeChanges(callback func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks = append(l.callbacks, callback)
}
