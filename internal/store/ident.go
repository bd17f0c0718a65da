package store

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind tags the interpretation of a caller-supplied identifier.
type Kind int

const (
	// KindInvalid marks an identifier that matches neither backend format.
	KindInvalid Kind = iota
	// KindObject is a MongoDB ObjectID (24 hex chars).
	KindObject
	// KindSeq is a sequential integer key from the in-memory backend.
	KindSeq
)

// ID is the parsed form of a public identifier. Identifiers arrive as
// ObjectID hex strings (document backend), decimal strings (in-memory
// backend), or garbage; ParseID decides once and everything downstream
// switches on the kind instead of re-guessing.
type ID struct {
	kind Kind
	oid  primitive.ObjectID
	seq  int
}

// ParseID applies the format rules in priority order: a valid ObjectID hex
// string is always treated as a document-backend key (even when every hex
// digit happens to be decimal), then a pure digit string as a sequence
// number, and anything else is invalid — never silently coerced.
func ParseID(raw string) ID {
	if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
		return ID{kind: KindObject, oid: oid}
	}
	if isDigits(raw) {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return ID{kind: KindSeq, seq: n}
		}
	}
	return ID{kind: KindInvalid}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ObjectID wraps a native document-backend identifier.
func ObjectID(oid primitive.ObjectID) ID { return ID{kind: KindObject, oid: oid} }

// SeqID wraps an in-memory sequence number.
func SeqID(n int) ID { return ID{kind: KindSeq, seq: n} }

func (id ID) Kind() Kind { return id.kind }

func (id ID) IsInvalid() bool { return id.kind == KindInvalid }

// Object returns the ObjectID; only meaningful when Kind is KindObject.
func (id ID) Object() primitive.ObjectID { return id.oid }

// Seq returns the sequence number; only meaningful when Kind is KindSeq.
func (id ID) Seq() int { return id.seq }

func (id ID) String() string {
	switch id.kind {
	case KindObject:
		return id.oid.Hex()
	case KindSeq:
		return strconv.Itoa(id.seq)
	default:
		return ""
	}
}
