// Package dmap implements the Digital Media Access Protocol tagged,
// length-prefixed binary encoding used for every non-audio DAAP response
// body.
package dmap

import "time"

// Kind identifies the payload type carried by a Node. The wire width of
// integer kinds is fixed by the Kind, not by the value at hand. Encode
// takes each node's Kind as given and does not check it against the
// content-code registry; only Decode looks kinds up in a Registry.
type Kind int

// possible Node payload kinds
const (
	KindUint8 Kind = iota
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindString
	KindBytes
	KindTimestamp
	KindVersion
	KindContainer
)

// Version is a DMAP version quad, encoded as two big-endian uint16s
// (major.minor)
type Version struct {
	Major uint16
	Minor uint16
}

// Node is a recursive tagged-tree node: a 4-byte content code plus a
// payload that is either a scalar value or an ordered list of children.
type Node struct {
	Code     string
	Kind     Kind
	UInt     uint64
	Int      int64
	Str      string
	Raw      []byte
	Time     time.Time
	Ver      Version
	Children []Node
}

// U8 creates an unsigned 8-bit integer node
func U8(code string, v uint8) Node { return Node{Code: code, Kind: KindUint8, UInt: uint64(v)} }

// U16 creates an unsigned 16-bit integer node
func U16(code string, v uint16) Node { return Node{Code: code, Kind: KindUint16, UInt: uint64(v)} }

// U32 creates an unsigned 32-bit integer node
func U32(code string, v uint32) Node { return Node{Code: code, Kind: KindUint32, UInt: uint64(v)} }

// U64 creates an unsigned 64-bit integer node
func U64(code string, v uint64) Node { return Node{Code: code, Kind: KindUint64, UInt: v} }

// I8 creates a signed 8-bit integer node
func I8(code string, v int8) Node { return Node{Code: code, Kind: KindInt8, Int: int64(v)} }

// I16 creates a signed 16-bit integer node
func I16(code string, v int16) Node { return Node{Code: code, Kind: KindInt16, Int: int64(v)} }

// I32 creates a signed 32-bit integer node
func I32(code string, v int32) Node { return Node{Code: code, Kind: KindInt32, Int: int64(v)} }

// I64 creates a signed 64-bit integer node
func I64(code string, v int64) Node { return Node{Code: code, Kind: KindInt64, Int: v} }

// Str creates a UTF-8 string node
func Str(code string, v string) Node { return Node{Code: code, Kind: KindString, Str: v} }

// Bytes creates a raw byte-string node
func Bytes(code string, v []byte) Node { return Node{Code: code, Kind: KindBytes, Raw: v} }

// Time creates a timestamp node (seconds since epoch, 32-bit on the wire)
func Time(code string, v time.Time) Node { return Node{Code: code, Kind: KindTimestamp, Time: v} }

// Ver creates a version-quad node
func Ver(code string, major, minor uint16) Node {
	return Node{Code: code, Kind: KindVersion, Ver: Version{Major: major, Minor: minor}}
}

// Container creates a node whose payload is the ordered encoding of its
// children
func Container(code string, children ...Node) Node {
	return Node{Code: code, Kind: KindContainer, Children: children}
}
