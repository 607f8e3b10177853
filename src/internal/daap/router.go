package daap

import (
	"bufio"
	"regexp"
	"strconv"
	"sync"
	"time"

	"gitlab.com/mipimipi/daapd/src/internal/config"
	"gitlab.com/mipimipi/daapd/src/internal/dmap"
	"gitlab.com/mipimipi/daapd/src/internal/httpio"
	"gitlab.com/mipimipi/daapd/src/internal/library"
	"gitlab.com/mipimipi/daapd/src/internal/playlist"
	"gitlab.com/mipimipi/daapd/src/internal/revision"
	"gitlab.com/mipimipi/daapd/src/internal/session"
)

var (
	reItems          = regexp.MustCompile(`^/databases/(\d+)/items$`)
	reItem           = regexp.MustCompile(`^/databases/(\d+)/items/(\d+)\.\w+$`)
	reArtwork        = regexp.MustCompile(`^/databases/(\d+)/items/(\d+)/extra_data/artwork$`)
	reContainers     = regexp.MustCompile(`^/databases/(\d+)/containers$`)
	reContainerItems = regexp.MustCompile(`^/databases/(\d+)/containers/(\d+)/items$`)
	reGroups         = regexp.MustCompile(`^/databases/(\d+)/groups$`)
)

// Router dispatches parsed requests to the handler matching its route
// table, enforcing session and auth preconditions before each handler
// builds its DMAP response.
type Router struct {
	cfg      *config.Cfg
	lib      library.Library
	sessions *session.Manager
	revs     *revision.Manager
	reg      *dmap.Registry

	base     *playlist.State
	listsMu  sync.Mutex
	lists    map[uint32]*playlist.State
}

// New creates a Router serving lib over cfg, using sessions and revs
// for session/revision state and reg as the content-code bag.
func New(cfg *config.Cfg, lib library.Library, sessions *session.Manager, revs *revision.Manager, reg *dmap.Registry) *Router {
	return &Router{
		cfg:      cfg,
		lib:      lib,
		sessions: sessions,
		revs:     revs,
		reg:      reg,
		base:     &playlist.State{},
		lists:    make(map[uint32]*playlist.State),
	}
}

// Handle implements httpio.Handler.
func (rt *Router) Handle(w *bufio.Writer, req *httpio.Request, remoteAddr string) (closeConn bool) {
	switch {
	case req.Path == "/server-info":
		return rt.handleServerInfo(w)
	case req.Path == "/content-codes":
		return rt.handleContentCodes(w)
	case req.Path == "/login":
		return rt.handleLogin(w, req, remoteAddr)
	case req.Path == "/logout":
		return rt.withSession(w, req, rt.handleLogout)
	case req.Path == "/update":
		return rt.withSession(w, req, rt.handleUpdate)
	case req.Path == "/databases":
		return rt.withSession(w, req, rt.handleDatabases)
	case reItems.MatchString(req.Path):
		return rt.withSessionDB(w, req, reItems, rt.handleItems)
	case reItem.MatchString(req.Path):
		return rt.withSessionTrack(w, req, reItem, rt.handleItem)
	case reArtwork.MatchString(req.Path):
		return rt.withSessionTrack(w, req, reArtwork, rt.handleArtwork)
	case reContainers.MatchString(req.Path):
		return rt.withSessionDB(w, req, reContainers, rt.handleContainers)
	case reContainerItems.MatchString(req.Path):
		return rt.withSessionPlaylist(w, req, reContainerItems, rt.handleContainerItems)
	case reGroups.MatchString(req.Path):
		return rt.withSessionDB(w, req, reGroups, rt.handleGroups)
	default:
		_ = httpio.WriteError(w, 403, "")
		return false
	}
}

func (rt *Router) sessionID(req *httpio.Request) (uint32, bool) {
	raw := req.Query.Get("session-id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

func queryInt(req *httpio.Request, name string) int {
	raw := req.Query.Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// withSession enforces a known session id before calling next.
func (rt *Router) withSession(w *bufio.Writer, req *httpio.Request, next func(*bufio.Writer, *httpio.Request, uint32) bool) bool {
	id, ok := rt.sessionID(req)
	if !ok || !rt.sessions.Exists(id) {
		_ = httpio.WriteError(w, 403, "")
		return false
	}
	rt.sessions.Touch(id, time.Now())
	return next(w, req, id)
}

func (rt *Router) withSessionDB(w *bufio.Writer, req *httpio.Request, re *regexp.Regexp, next func(*bufio.Writer, *httpio.Request, uint32, uint32) bool) bool {
	return rt.withSession(w, req, func(w *bufio.Writer, req *httpio.Request, sessID uint32) bool {
		m := re.FindStringSubmatch(req.Path)
		db, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil || uint32(db) != rt.lib.DatabaseID() {
			_ = httpio.WriteError(w, 400, "unknown database")
			return false
		}
		return next(w, req, sessID, uint32(db))
	})
}

func (rt *Router) withSessionTrack(w *bufio.Writer, req *httpio.Request, re *regexp.Regexp, next func(*bufio.Writer, *httpio.Request, uint32, library.Track) bool) bool {
	return rt.withSession(w, req, func(w *bufio.Writer, req *httpio.Request, sessID uint32) bool {
		m := re.FindStringSubmatch(req.Path)
		db, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil || uint32(db) != rt.lib.DatabaseID() {
			_ = httpio.WriteError(w, 400, "unknown database")
			return false
		}
		tid, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			_ = httpio.WriteError(w, 400, "malformed track id")
			return false
		}
		track, ok := rt.lib.LookupTrack(uint32(tid))
		if !ok {
			_ = httpio.WriteError(w, 400, "unknown track")
			return false
		}
		return next(w, req, sessID, track)
	})
}

func (rt *Router) withSessionPlaylist(w *bufio.Writer, req *httpio.Request, re *regexp.Regexp, next func(*bufio.Writer, *httpio.Request, uint32, library.Playlist) bool) bool {
	return rt.withSession(w, req, func(w *bufio.Writer, req *httpio.Request, sessID uint32) bool {
		m := re.FindStringSubmatch(req.Path)
		db, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil || uint32(db) != rt.lib.DatabaseID() {
			_ = httpio.WriteError(w, 400, "unknown database")
			return false
		}
		pid, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			_ = httpio.WriteError(w, 400, "malformed playlist id")
			return false
		}
		pl, ok := rt.lib.LookupPlaylist(uint32(pid))
		if !ok {
			_ = httpio.WriteError(w, 400, "unknown playlist")
			return false
		}
		return next(w, req, sessID, pl)
	})
}

func (rt *Router) playlistState(id uint32) *playlist.State {
	if id == 1 {
		return rt.base
	}
	rt.listsMu.Lock()
	defer rt.listsMu.Unlock()
	st, ok := rt.lists[id]
	if !ok {
		st = &playlist.State{}
		rt.lists[id] = st
	}
	return st
}
