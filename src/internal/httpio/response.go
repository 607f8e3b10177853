package httpio

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"gitlab.com/mipimipi/daapd/src/internal/dmap"
)

// chunkSize is the fixed block size used to stream file bodies, per the
// spec's backpressure design: a blocking writer and fixed-size chunks
// let slow readers throttle the producer without extra buffering.
const chunkSize = 8 * 1024

// ServerName is included on every response via the DAAP-Server header.
var ServerName = "daapd"

// WriteDMAP writes a 200 response whose body is the DMAP encoding of n.
func WriteDMAP(w *bufio.Writer, n dmap.Node) error {
	body := dmap.Encode(n)
	writeStatusLine(w, 200, "OK")
	writeCommonHeaders(w, len(body))
	fmt.Fprintf(w, "Content-Type: application/x-dmap-tagged\r\n")
	fmt.Fprintf(w, "\r\n")
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "httpio: writing dmap body")
	}
	return w.Flush()
}

// WriteError writes a short plain-text error response with the given
// status code.
func WriteError(w *bufio.Writer, code int, text string) error {
	writeStatusLine(w, code, statusText(code))
	writeCommonHeaders(w, len(text))
	fmt.Fprintf(w, "Content-Type: text/plain\r\n")
	fmt.Fprintf(w, "\r\n")
	if _, err := w.WriteString(text); err != nil {
		return errors.Wrap(err, "httpio: writing error body")
	}
	return w.Flush()
}

// WriteAuthChallenge writes a 401 with a WWW-Authenticate challenge for
// realm.
func WriteAuthChallenge(w *bufio.Writer, realm string) error {
	body := "unauthorized"
	writeStatusLine(w, 401, "Unauthorized")
	writeCommonHeaders(w, len(body))
	fmt.Fprintf(w, "WWW-Authenticate: Basic realm=\"%s\"\r\n", realm)
	fmt.Fprintf(w, "\r\n")
	if _, err := w.WriteString(body); err != nil {
		return errors.Wrap(err, "httpio: writing auth challenge body")
	}
	return w.Flush()
}

// WriteFile streams the length-offset bytes that remain of a length-byte
// file from stream (which the caller has already positioned at offset)
// to w, in chunkSize blocks. If offset is 0 it writes 200 with the full
// length; otherwise it writes 206 with the Content-Range header in
// the non-standard form "bytes off-len/len+1" (not the standard
// off-(len-1)/len) that real DAAP clients expect.
func WriteFile(w *bufio.Writer, stream io.Reader, length, offset int64) error {
	remaining := length - offset
	if remaining < 0 {
		remaining = 0
	}

	if offset == 0 {
		writeStatusLine(w, 200, "OK")
	} else {
		writeStatusLine(w, 206, "Partial Content")
	}
	writeCommonHeaders(w, int(remaining))
	if offset != 0 {
		// preserved verbatim for client compatibility; see DESIGN.md
		fmt.Fprintf(w, "Content-Range: bytes %d-%d/%d\r\n", offset, length, length+1)
	}
	fmt.Fprintf(w, "\r\n")

	buf := make([]byte, chunkSize)
	var sent int64
	for sent < remaining {
		want := remaining - sent
		if want > chunkSize {
			want = chunkSize
		}
		n, err := stream.Read(buf[:want])
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "httpio: writing file chunk")
			}
			sent += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrap(err, "httpio: reading file chunk")
		}
	}
	return w.Flush()
}

// WriteArtwork writes a 200 response whose body is artwork bytes with
// Content-Type image/<mime>.
func WriteArtwork(w *bufio.Writer, data []byte, mime string) error {
	writeStatusLine(w, 200, "OK")
	writeCommonHeaders(w, len(data))
	fmt.Fprintf(w, "Content-Type: image/%s\r\n", mime)
	fmt.Fprintf(w, "\r\n")
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "httpio: writing artwork body")
	}
	return w.Flush()
}

func writeStatusLine(w *bufio.Writer, code int, reason string) {
	fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", code, reason)
}

func writeCommonHeaders(w *bufio.Writer, contentLength int) {
	fmt.Fprintf(w, "DAAP-Server: %s\r\n", ServerName)
	fmt.Fprintf(w, "Content-Length: %d\r\n", contentLength)
}

func statusText(code int) string {
	switch code {
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 500:
		return "Internal Server Error"
	case 503:
		return "Service Unavailable"
	default:
		return "OK"
	}
}

// BasicAuthHeader builds an Authorization header value for (user,
// password), used by tests exercising the auth challenge flow.
func BasicAuthHeader(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}
