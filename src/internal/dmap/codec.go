package dmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

func timeFromUnix(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

// Encode renders a content node as bytes: code(4B) || big-endian
// length(4B) || body, with container bodies being the concatenation of
// their children's encodings in list order.
func Encode(n Node) []byte {
	buf := new(bytes.Buffer)
	encodeInto(buf, n)
	return buf.Bytes()
}

func encodeInto(buf *bytes.Buffer, n Node) {
	body := encodeBody(n)
	buf.WriteString(pad4(n.Code))
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(body)))
	buf.Write(length[:])
	buf.Write(body)
}

func encodeBody(n Node) []byte {
	switch n.Kind {
	case KindUint8:
		return []byte{byte(n.UInt)}
	case KindUint16:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(n.UInt))
		return b[:]
	case KindUint32:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(n.UInt))
		return b[:]
	case KindUint64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], n.UInt)
		return b[:]
	case KindInt8:
		return []byte{byte(n.Int)}
	case KindInt16:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(n.Int))
		return b[:]
	case KindInt32:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(n.Int))
		return b[:]
	case KindInt64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(n.Int))
		return b[:]
	case KindString:
		return []byte(n.Str)
	case KindBytes:
		return n.Raw
	case KindTimestamp:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(n.Time.Unix()))
		return b[:]
	case KindVersion:
		var b [4]byte
		binary.BigEndian.PutUint16(b[0:2], n.Ver.Major)
		binary.BigEndian.PutUint16(b[2:4], n.Ver.Minor)
		return b[:]
	case KindContainer:
		buf := new(bytes.Buffer)
		for _, child := range n.Children {
			encodeInto(buf, child)
		}
		return buf.Bytes()
	default:
		return nil
	}
}

// pad4 returns code, truncated or space-padded to exactly 4 bytes, as
// the wire format requires
func pad4(code string) string {
	if len(code) >= 4 {
		return code[:4]
	}
	return code + "    "[:4-len(code)]
}

// Decode parses bytes back into a Node tree using the registry to
// determine each code's kind, so that container children can be
// recovered with the right shape. It is not required by the server core
// but is used by tests to verify round-tripping. It rejects a container
// whose declared length does not exactly cover its children.
func Decode(b []byte, reg *Registry) (Node, error) {
	n, rest, err := decodeOne(b, reg)
	if err != nil {
		return Node{}, err
	}
	if len(rest) != 0 {
		return Node{}, fmt.Errorf("dmap: %d trailing bytes after top-level node", len(rest))
	}
	return n, nil
}

func decodeOne(b []byte, reg *Registry) (Node, []byte, error) {
	if len(b) < 8 {
		return Node{}, nil, fmt.Errorf("dmap: truncated header, need 8 bytes, got %d", len(b))
	}
	code := string(b[0:4])
	length := binary.BigEndian.Uint32(b[4:8])
	if uint32(len(b)-8) < length {
		return Node{}, nil, fmt.Errorf("dmap: code %q declares length %d, only %d bytes available", code, length, len(b)-8)
	}
	body := b[8 : 8+length]
	rest := b[8+length:]

	kind, ok := reg.Kind(code)
	if !ok {
		// unknown code: treat as opaque bytes so decoding degrades
		// gracefully rather than failing outright
		kind = KindBytes
	}

	n := Node{Code: code, Kind: kind}
	switch kind {
	case KindUint8:
		if len(body) != 1 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: uint8 body must be 1 byte, got %d", code, len(body))
		}
		n.UInt = uint64(body[0])
	case KindUint16:
		if len(body) != 2 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: uint16 body must be 2 bytes, got %d", code, len(body))
		}
		n.UInt = uint64(binary.BigEndian.Uint16(body))
	case KindUint32:
		if len(body) != 4 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: uint32 body must be 4 bytes, got %d", code, len(body))
		}
		n.UInt = uint64(binary.BigEndian.Uint32(body))
	case KindUint64:
		if len(body) != 8 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: uint64 body must be 8 bytes, got %d", code, len(body))
		}
		n.UInt = binary.BigEndian.Uint64(body)
	case KindInt8:
		if len(body) != 1 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: int8 body must be 1 byte, got %d", code, len(body))
		}
		n.Int = int64(int8(body[0]))
	case KindInt16:
		if len(body) != 2 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: int16 body must be 2 bytes, got %d", code, len(body))
		}
		n.Int = int64(int16(binary.BigEndian.Uint16(body)))
	case KindInt32:
		if len(body) != 4 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: int32 body must be 4 bytes, got %d", code, len(body))
		}
		n.Int = int64(int32(binary.BigEndian.Uint32(body)))
	case KindInt64:
		if len(body) != 8 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: int64 body must be 8 bytes, got %d", code, len(body))
		}
		n.Int = int64(binary.BigEndian.Uint64(body))
	case KindString:
		n.Str = string(body)
	case KindBytes:
		n.Raw = append([]byte(nil), body...)
	case KindTimestamp:
		if len(body) != 4 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: timestamp body must be 4 bytes, got %d", code, len(body))
		}
		n.Time = timeFromUnix(int64(binary.BigEndian.Uint32(body)))
	case KindVersion:
		if len(body) != 4 {
			return Node{}, nil, fmt.Errorf("dmap: code %q: version body must be 4 bytes, got %d", code, len(body))
		}
		n.Ver = Version{
			Major: binary.BigEndian.Uint16(body[0:2]),
			Minor: binary.BigEndian.Uint16(body[2:4]),
		}
	case KindContainer:
		children, err := decodeChildren(body, reg)
		if err != nil {
			return Node{}, nil, fmt.Errorf("dmap: code %q: %w", code, err)
		}
		n.Children = children
	}

	return n, rest, nil
}

// decodeChildren decodes body as a sequence of sibling nodes, verifying
// that the declared lengths exactly cover the supplied bytes.
func decodeChildren(body []byte, reg *Registry) ([]Node, error) {
	var children []Node
	for len(body) > 0 {
		child, rest, err := decodeOne(body, reg)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		body = rest
	}
	return children, nil
}
