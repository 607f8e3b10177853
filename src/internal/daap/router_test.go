package daap

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/mipimipi/daapd/src/internal/config"
	"gitlab.com/mipimipi/daapd/src/internal/dmap"
	"gitlab.com/mipimipi/daapd/src/internal/httpio"
	"gitlab.com/mipimipi/daapd/src/internal/library/memory"
	"gitlab.com/mipimipi/daapd/src/internal/revision"
	"gitlab.com/mipimipi/daapd/src/internal/session"
)

func timeNow() time.Time { return time.Now() }

func itoa(id uint32) string { return strconv.FormatUint(uint64(id), 10) }

func newTestRouter(t *testing.T) (*Router, *memory.Library, *session.Manager, *revision.Manager) {
	t.Helper()
	lib := memory.New(1, "Test")
	sessions := session.New(0, 0)
	revs := revision.New()
	var cfg config.Cfg
	require.NoError(t, json.Unmarshal([]byte(`{"daap":{"name":"Test","auth_method":"none"}}`), &cfg))
	rt := New(&cfg, lib, sessions, revs, dmap.DefaultRegistry())
	return rt, lib, sessions, revs
}

func doRequest(t *testing.T, rt *Router, raw string) (*httpio.Request, string) {
	t.Helper()
	req, err := httpio.ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	w := bufio.NewWriter(buf)
	rt.Handle(w, req, "127.0.0.1:1234")
	return req, buf.String()
}

func TestServerInfoNoSessionRequired(t *testing.T) {
	rt, _, _, _ := newTestRouter(t)
	_, resp := doRequest(t, rt, "GET /server-info HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "HTTP/1.1 200")
}

func TestUnknownSessionForbiddenOnProtectedRoutes(t *testing.T) {
	rt, _, _, _ := newTestRouter(t)
	_, resp := doRequest(t, rt, "GET /databases?session-id=9999 HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "HTTP/1.1 403")
}

func TestLoginThenDatabasesAndItems(t *testing.T) {
	rt, lib, _, _ := newTestRouter(t)
	lib.AddTrack(1, memory.Track{Title: "One"})
	lib.AddTrack(2, memory.Track{Title: "Two"})

	_, loginResp := doRequest(t, rt, "GET /login HTTP/1.1\r\n\r\n")
	require.Contains(t, loginResp, "HTTP/1.1 200")

	sessID := extractSessionID(t, rt, loginResp)

	_, dbResp := doRequest(t, rt, "GET /databases?session-id="+sessID+" HTTP/1.1\r\n\r\n")
	assert.Contains(t, dbResp, "HTTP/1.1 200")

	_, itemsResp := doRequest(t, rt, "GET /databases/1/items?session-id="+sessID+" HTTP/1.1\r\n\r\n")
	assert.Contains(t, itemsResp, "HTTP/1.1 200")
}

func TestUnknownDatabaseIDRejected(t *testing.T) {
	rt, _, sessions, _ := newTestRouter(t)
	id, err := sessions.Login("x", "", timeNow())
	require.NoError(t, err)

	_, resp := doRequest(t, rt, "GET /databases/99/items?session-id="+itoa(id)+" HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "HTTP/1.1 400")
}

func TestGroupsEndpointByAlbum(t *testing.T) {
	rt, lib, sessions, _ := newTestRouter(t)
	lib.AddTrack(1, memory.Track{Album: "A"})
	lib.AddTrack(2, memory.Track{Album: "A"})
	id, err := sessions.Login("x", "", timeNow())
	require.NoError(t, err)

	_, resp := doRequest(t, rt, "GET /databases/1/groups?session-id="+itoa(id)+" HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "HTTP/1.1 200")
}

func extractSessionID(t *testing.T, rt *Router, resp string) string {
	t.Helper()
	idx := strings.Index(resp, "\r\n\r\n")
	require.GreaterOrEqual(t, idx, 0)
	body := []byte(resp[idx+4:])
	n, err := dmap.Decode(body, dmap.DefaultRegistry())
	require.NoError(t, err)
	for _, c := range n.Children {
		if c.Code == "mlid" {
			return itoa(uint32(c.UInt))
		}
	}
	t.Fatal("no mlid in login response")
	return ""
}
