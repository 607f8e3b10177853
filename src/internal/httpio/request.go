// Package httpio implements the hand-rolled HTTP/1.1 subset DAAP
// clients use: request-line and header parsing bounded against
// slow-loris style abuse, open-ended Range parsing, a keep-alive
// request loop, and the writer helpers every handler calls to send its
// response.
package httpio

import (
	"bufio"
	"encoding/base64"
	"io"
	"net/url"
	"strconv"
	"strings"

	l "github.com/sirupsen/logrus"

	"github.com/pkg/errors"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "httpio"})

// maxHeaderBytes and maxHeaderLines bound header parsing per the
// REDESIGN FLAGS hardening: an over-long or over-numerous header block
// is rejected with 400 rather than read to completion.
const (
	maxHeaderBytes = 64 * 1024
	maxHeaderLines = 100
)

// Request is a parsed GET request: method/target/version, headers, the
// path split from its query string, and any parsed Range.
type Request struct {
	Method  string
	Target  string
	Path    string
	Query   url.Values
	Version string

	Headers map[string]string

	Range      Range
	HasRange   bool
	Auth       string // raw base64 value following "Basic "
	HasAuth    bool
	KeepAlive  bool
}

// Range is an open-ended single byte range: bytes=<Offset>-.
type Range struct {
	Offset int64
}

// ErrMalformedRequest is returned for a request line or header block
// that does not parse; the router maps it to 400.
var ErrMalformedRequest = errors.New("httpio: malformed request")

// ErrHeadersTooLarge is returned when the header block exceeds the
// configured bounds.
var ErrHeadersTooLarge = errors.New("httpio: headers too large")

// ReadRequest reads one request from r: the request line, then headers
// until a blank line or EOF. Only GET is accepted; anything else yields
// ErrMalformedRequest so the caller can write 400.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	line, err := readBoundedLine(r)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, io.EOF
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, ErrMalformedRequest
	}
	method, target, version := parts[0], parts[1], strings.TrimRight(parts[2], "\r\n")
	if method != "GET" {
		return nil, ErrMalformedRequest
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, ErrMalformedRequest
	}

	req := &Request{
		Method:    method,
		Target:    target,
		Path:      u.Path,
		Query:     u.Query(),
		Version:   version,
		Headers:   make(map[string]string),
		KeepAlive: true,
	}

	totalBytes := len(line)
	lineCount := 1
	for {
		hline, err := readBoundedLine(r)
		if err != nil {
			return nil, err
		}
		hline = strings.TrimRight(hline, "\r\n")
		if hline == "" {
			break
		}

		lineCount++
		totalBytes += len(hline)
		if lineCount > maxHeaderLines || totalBytes > maxHeaderBytes {
			return nil, ErrHeadersTooLarge
		}

		name, value, ok := strings.Cut(hline, ":")
		if !ok {
			continue // tolerate malformed header lines
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	req.parseAuth()
	req.parseRange()
	if strings.EqualFold(req.Headers["Connection"], "close") {
		req.KeepAlive = false
	}

	return req, nil
}

func (req *Request) parseAuth() {
	h, ok := req.Headers["Authorization"]
	if !ok {
		return
	}
	const prefix = "Basic "
	if !strings.HasPrefix(h, prefix) {
		return // unsupported scheme: reduces to "no auth supplied"
	}
	req.Auth = strings.TrimPrefix(h, prefix)
	req.HasAuth = true
}

func (req *Request) parseRange() {
	h, ok := req.Headers["Range"]
	if !ok {
		return
	}
	const prefix = "bytes="
	if !strings.HasPrefix(h, prefix) {
		return // malformed: reduces to "no range"
	}
	spec := strings.TrimPrefix(h, prefix)
	if !strings.HasSuffix(spec, "-") {
		return
	}
	offStr := strings.TrimSuffix(spec, "-")
	off, err := strconv.ParseInt(offStr, 10, 64)
	if err != nil || off < 0 {
		return
	}
	req.Range = Range{Offset: off}
	req.HasRange = true
}

// readBoundedLine reads a single CRLF- or LF-terminated line, bounding
// its length so a client cannot force unbounded buffering with a line
// that never terminates.
func readBoundedLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if sb.Len() == 0 {
				return "", err
			}
			return sb.String(), nil
		}
		sb.Write(chunk)
		if sb.Len() > maxHeaderBytes {
			return "", ErrHeadersTooLarge
		}
		if !isPrefix {
			return sb.String(), nil
		}
	}
}

// BasicCredentials decodes req.Auth into (user, password). ok is false
// if no Basic auth was supplied or it does not decode.
func (req *Request) BasicCredentials() (user, password string, ok bool) {
	if !req.HasAuth {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(req.Auth)
	if err != nil {
		return "", "", false
	}
	decoded := string(raw)
	user, password, found := strings.Cut(decoded, ":")
	if !found {
		return "", "", false
	}
	return user, password, true
}
