package daap

import (
	"bufio"
	"io"
	"time"

	"gitlab.com/mipimipi/daapd/src/internal/httpio"
	"gitlab.com/mipimipi/daapd/src/internal/library"
	"gitlab.com/mipimipi/daapd/src/internal/playlist"
	"gitlab.com/mipimipi/daapd/src/internal/session"
)

func (rt *Router) handleServerInfo(w *bufio.Writer) bool {
	info := ServerInfo{
		Name:           rt.cfg.Name(),
		AuthMethod:     string(rt.cfg.AuthMethod()),
		TimeoutSeconds: uint32(rt.cfg.SessionTimeout().Seconds()),
		DatabaseCount:  1,
	}
	_ = httpio.WriteDMAP(w, BuildServerInfo(info))
	return false
}

func (rt *Router) handleContentCodes(w *bufio.Writer) bool {
	_ = httpio.WriteDMAP(w, BuildContentCodes(rt.reg))
	return false
}

func (rt *Router) handleLogin(w *bufio.Writer, req *httpio.Request, remoteAddr string) bool {
	if rt.cfg.AuthMethod() != "none" {
		if !rt.authorized(req) {
			_ = httpio.WriteAuthChallenge(w, rt.cfg.Name())
			return false
		}
	}

	now := time.Now()
	rt.sessions.ExpireIdle(now)

	id, err := rt.sessions.Login(remoteAddr, "", now)
	if err == session.ErrTooManyUsers {
		_ = httpio.WriteError(w, 503, "too many users")
		return false
	}
	log.WithField("session", id).Debug("login")
	_ = httpio.WriteDMAP(w, BuildLogin(id))
	return false
}

func (rt *Router) authorized(req *httpio.Request) bool {
	user, pass, ok := req.BasicCredentials()
	if !ok {
		return false
	}
	for _, c := range rt.cfg.Credentials() {
		switch rt.cfg.AuthMethod() {
		case "password":
			if c.Password == pass {
				return true
			}
		case "user_and_password":
			if c.User == user && c.Password == pass {
				return true
			}
		}
	}
	return false
}

func (rt *Router) handleLogout(w *bufio.Writer, req *httpio.Request, sessID uint32) bool {
	rt.sessions.Logout(sessID)
	_ = httpio.WriteError(w, 200, "")
	return true
}

func (rt *Router) handleUpdate(w *bufio.Writer, req *httpio.Request, sessID uint32) bool {
	clientRev := queryInt(req, "revision-number")
	rev, stopped := rt.revs.WaitForUpdate(clientRev)
	if stopped {
		_ = httpio.WriteError(w, 404, "")
		return false
	}
	_ = httpio.WriteDMAP(w, BuildUpdate(rev))
	return false
}

func (rt *Router) handleDatabases(w *bufio.Writer, req *httpio.Request, sessID uint32) bool {
	_ = httpio.WriteDMAP(w, BuildDatabases(rt.lib.DatabaseID(), rt.lib.DatabaseName(), len(rt.lib.IterTracks())))
	return false
}

func (rt *Router) handleItems(w *bufio.Writer, req *httpio.Request, sessID, dbID uint32) bool {
	sel := ParseMeta(req.Query.Get("meta"))
	tracks := rt.lib.IterTracks()

	delta := queryInt(req, "delta")
	if delta <= 0 {
		_ = httpio.WriteDMAP(w, BuildTrackListing(tracks, sel, false, nil))
		return false
	}

	deleted := rt.revs.DeletedSince(delta)
	_ = httpio.WriteDMAP(w, BuildTrackListing(tracks, sel, true, deleted))
	return false
}

func (rt *Router) handleItem(w *bufio.Writer, req *httpio.Request, sessID uint32, track library.Track) bool {
	stream, length, err := rt.lib.OpenAudio(track)
	if err != nil || stream == nil {
		_ = httpio.WriteError(w, 500, "no file")
		return true
	}
	defer stream.Close()

	offset := int64(0)
	if req.HasRange {
		offset = req.Range.Offset
	}
	if offset > 0 {
		if _, err := io.CopyN(io.Discard, stream, offset); err != nil && err != io.EOF {
			_ = httpio.WriteError(w, 500, "no file")
			return true
		}
	}
	_ = httpio.WriteFile(w, stream, length, offset)
	return true
}

func (rt *Router) handleArtwork(w *bufio.Writer, req *httpio.Request, sessID uint32, track library.Track) bool {
	data, mime, ok := rt.lib.GetArtwork(track)
	if !ok {
		_ = httpio.WriteError(w, 500, "no file")
		return true
	}
	_ = httpio.WriteArtwork(w, data, mime)
	return true
}

func (rt *Router) handleContainers(w *bufio.Writer, req *httpio.Request, sessID, dbID uint32) bool {
	_ = httpio.WriteDMAP(w, BuildPlaylists(rt.lib.IterPlaylists()))
	return false
}

func (rt *Router) handleContainerItems(w *bufio.Writer, req *httpio.Request, sessID uint32, pl library.Playlist) bool {
	st := rt.playlistState(pl.PlaylistID)
	removed := st.Refresh(pl.TrackIDs())

	delta := queryInt(req, "delta")
	entries := toPlaylistEntries(st.Entries())

	if delta <= 0 {
		_ = httpio.WriteDMAP(w, BuildPlaylistItems(entries, false, nil))
		return false
	}
	_ = httpio.WriteDMAP(w, BuildPlaylistItems(entries, true, removed))
	return false
}

func (rt *Router) handleGroups(w *bufio.Writer, req *httpio.Request, sessID, dbID uint32) bool {
	kind := req.Query.Get("group")
	tracks := rt.lib.IterTracks()
	if kind == "artist" {
		_ = httpio.WriteDMAP(w, BuildGroups("agar", tracks, GroupByArtist))
		return false
	}
	_ = httpio.WriteDMAP(w, BuildGroups("agal", tracks, GroupByAlbum))
	return false
}

func toPlaylistEntries(entries []playlist.Entry) []library.PlaylistEntry {
	out := make([]library.PlaylistEntry, len(entries))
	for i, e := range entries {
		out[i] = library.PlaylistEntry{ItemID: e.ItemID, ContainerID: e.ContainerID}
	}
	return out
}
