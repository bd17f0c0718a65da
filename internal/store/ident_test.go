package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseIDObjectHex(t *testing.T) {
	oid := primitive.NewObjectID()
	id := ParseID(oid.Hex())
	assert.Equal(t, KindObject, id.Kind())
	assert.Equal(t, oid, id.Object())
	assert.Equal(t, oid.Hex(), id.String())
}

func TestParseIDAllDecimalHexIsObject(t *testing.T) {
	// 24 decimal digits are still valid ObjectID hex; the object
	// interpretation wins
	id := ParseID("123456789012345678901234")
	assert.Equal(t, KindObject, id.Kind())
}

func TestParseIDSequence(t *testing.T) {
	id := ParseID("42")
	assert.Equal(t, KindSeq, id.Kind())
	assert.Equal(t, 42, id.Seq())
	assert.Equal(t, "42", id.String())
}

func TestParseIDInvalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "12ab", "-5", "+5", "0", "1.5", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		id := ParseID(raw)
		assert.True(t, id.IsInvalid(), "raw=%q", raw)
		assert.Equal(t, "", id.String(), "raw=%q", raw)
	}
}
