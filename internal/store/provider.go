package store

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"animeverse/pkg/models"
)

// Provider hands out the active backend. The live flag is flipped by the
// driver's heartbeat monitor, so availability transitions are observed
// within one heartbeat interval rather than on the next failed query.
// Callers grab Store() once per request; reads and writes inside a request
// always hit the same backend even if the flag flips mid-flight.
type Provider struct {
	mongo *MongoStore
	mem   *MemStore
	live  atomic.Bool
}

func NewProvider(mem *MemStore) *Provider {
	return &Provider{mem: mem}
}

// AttachMongo registers the document backend and marks it live. Called once
// at startup after a successful connect; before that every request is served
// from memory.
func (p *Provider) AttachMongo(ms *MongoStore) {
	p.mongo = ms
	p.SetLive(true)
}

// SetLive records a backend availability transition. Heartbeats fire every
// few seconds, so the log line is emitted only when the state actually
// changes.
func (p *Provider) SetLive(live bool) {
	if p.mongo == nil {
		return
	}
	if prev := p.live.Swap(live); prev != live {
		if live {
			log.Info().Msg("mongodb available, serving from document store")
		} else {
			log.Warn().Msg("mongodb unavailable, falling back to in-memory store")
		}
	}
}

// Live reports whether the document backend is currently answering
// heartbeats.
func (p *Provider) Live() bool {
	return p.mongo != nil && p.live.Load()
}

// Store returns the backend for this moment: the document store while it is
// live, the in-memory fallback otherwise.
func (p *Provider) Store() Store {
	if p.Live() {
		return p.mongo
	}
	return p.mem
}

// Memory exposes the fallback store directly; session resolution consults it
// even while the document store is live.
func (p *Provider) Memory() *MemStore {
	return p.mem
}

// ResolveUser loads the user behind a session or token subject. The primary
// backend is consulted first, then the in-memory store, because a session
// minted while degraded holds a sequential id that may not resolve to the
// same account in the document store. A malformed id means the principal
// cannot exist, not that the request is in error, so it resolves to no user.
func (p *Provider) ResolveUser(ctx context.Context, rawID string) (*models.User, error) {
	id := ParseID(rawID)
	if id.IsInvalid() {
		return nil, nil
	}
	if p.Live() {
		u, err := p.mongo.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return u, nil
		}
	}
	return p.mem.GetUser(ctx, id)
}
