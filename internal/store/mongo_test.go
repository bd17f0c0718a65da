package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A MongoStore with no database attached panics the moment a method issues a
// query, so these tests double as proof that user lookups with sequential
// ids short-circuit before touching the collection: a sequence number must
// never be guessed against whichever user document sits at that position.

func TestMongoStoreSequentialUserIDIsNotFound(t *testing.T) {
	s := &MongoStore{}
	ctx := context.Background()

	u, err := s.GetUser(ctx, SeqID(2))
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = s.SetUserAdmin(ctx, SeqID(2), true)
	require.NoError(t, err)
	assert.Nil(t, u)

	ok, err := s.DeleteUser(ctx, SeqID(2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMongoStoreInvalidUserID(t *testing.T) {
	s := &MongoStore{}
	ctx := context.Background()

	_, err := s.GetUser(ctx, ParseID("not-an-id"))
	assert.Equal(t, ErrInvalidID, err)

	_, err = s.SetUserAdmin(ctx, ParseID(""), false)
	assert.Equal(t, ErrInvalidID, err)

	_, err = s.DeleteUser(ctx, ParseID("12ab"))
	assert.Equal(t, ErrInvalidID, err)
}
