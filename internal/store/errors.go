package store

import "errors"

// Expected negative outcomes. "Not found" is not among them: lookups return
// (nil, nil) and deletes return (false, nil), matching the rest of the
// codebase. Anything else coming out of a store is an unexpected backend
// fault the route boundary logs and hides.
var (
	// ErrInvalidID reports an identifier that is neither an ObjectID hex
	// string nor a decimal sequence number.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrConflict reports a uniqueness violation (username, genre name,
	// episode number within an anime, favorite, anime-genre link).
	ErrConflict = errors.New("already exists")

	// ErrLastAdmin reports an attempt to demote or delete the only
	// remaining administrator.
	ErrLastAdmin = errors.New("cannot remove the last admin user")
)
