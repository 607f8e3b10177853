package httpio

import (
	"bufio"
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/mipimipi/daapd/src/internal/dmap"
)

func reader(raw string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(raw))
}

func TestReadRequestParsesLineAndHeaders(t *testing.T) {
	raw := "GET /server-info HTTP/1.1\r\nUser-Agent: iTunes/1.0\r\n\r\n"
	req, err := ReadRequest(reader(raw))
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/server-info", req.Path)
	assert.Equal(t, "iTunes/1.0", req.Headers["User-Agent"])
	assert.True(t, req.KeepAlive)
}

func TestReadRequestRejectsNonGet(t *testing.T) {
	raw := "POST /login HTTP/1.1\r\n\r\n"
	_, err := ReadRequest(reader(raw))
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestReadRequestParsesQuery(t *testing.T) {
	raw := "GET /update?session-id=5&revision-number=2 HTTP/1.1\r\n\r\n"
	req, err := ReadRequest(reader(raw))
	require.NoError(t, err)
	assert.Equal(t, url.Values{"session-id": {"5"}, "revision-number": {"2"}}, req.Query)
}

func TestReadRequestConnectionClose(t *testing.T) {
	raw := "GET /logout HTTP/1.1\r\nConnection: close\r\n\r\n"
	req, err := ReadRequest(reader(raw))
	require.NoError(t, err)
	assert.False(t, req.KeepAlive)
}

func TestReadRequestRejectsOversizedHeaders(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < 200; i++ {
		sb.WriteString("X-Pad: 0123456789\r\n")
	}
	sb.WriteString("\r\n")
	_, err := ReadRequest(reader(sb.String()))
	assert.ErrorIs(t, err, ErrHeadersTooLarge)
}

func TestParseRangeOpenEnded(t *testing.T) {
	raw := "GET /databases/1/items/7.mp3 HTTP/1.1\r\nRange: bytes=200-\r\n\r\n"
	req, err := ReadRequest(reader(raw))
	require.NoError(t, err)
	require.True(t, req.HasRange)
	assert.EqualValues(t, 200, req.Range.Offset)
}

func TestParseRangeMalformedIsIgnored(t *testing.T) {
	raw := "GET /x HTTP/1.1\r\nRange: bytes=abc-\r\n\r\n"
	req, err := ReadRequest(reader(raw))
	require.NoError(t, err)
	assert.False(t, req.HasRange)
}

func TestBasicCredentials(t *testing.T) {
	raw := "GET /login HTTP/1.1\r\nAuthorization: " + BasicAuthHeader("", "hunter2") + "\r\n\r\n"
	req, err := ReadRequest(reader(raw))
	require.NoError(t, err)
	user, pass, ok := req.BasicCredentials()
	require.True(t, ok)
	assert.Equal(t, "", user)
	assert.Equal(t, "hunter2", pass)
}

func TestWriteFileRangeZeroIsStatus200(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bufio.NewWriter(buf)
	data := bytes.Repeat([]byte{'a'}, 1000)
	require.NoError(t, WriteFile(w, bytes.NewReader(data), 1000, 0))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200"))
	assert.Contains(t, out, "Content-Length: 1000")
	assert.NotContains(t, out, "Content-Range")
}

func TestWriteFileRangeNonZeroIsStatus206(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bufio.NewWriter(buf)
	data := bytes.Repeat([]byte{'a'}, 1000)
	require.NoError(t, WriteFile(w, bytes.NewReader(data[200:]), 1000, 200))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 206"))
	assert.Contains(t, out, "Content-Length: 800")
	assert.Contains(t, out, "Content-Range: bytes 200-1000/1001")
}

func TestWriteDMAPSetsContentType(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bufio.NewWriter(buf)
	require.NoError(t, WriteDMAP(w, dmap.U32("mstt", 200)))
	assert.Contains(t, buf.String(), "Content-Type: application/x-dmap-tagged")
}

func TestWriteAuthChallenge(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bufio.NewWriter(buf)
	require.NoError(t, WriteAuthChallenge(w, "Test"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 401"))
	assert.Contains(t, out, `WWW-Authenticate: Basic realm="Test"`)
}
