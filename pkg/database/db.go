package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI      string
	User     string
	Password string
	Name     string
}

const (
	serverSelectionTimeout = 5 * time.Second
	connectTimeout         = 10 * time.Second
	socketTimeout          = 30 * time.Second
	maxPoolSize            = 50
)

// Connect dials the configured MongoDB deployment with bounded timeouts.
// onState receives heartbeat-driven availability transitions for the life of
// the client; it is the only writer of the process-wide live flag. A failed
// connect returns an error instead of exiting so the caller can degrade to
// the in-memory store.
func Connect(ctx context.Context, cfg Config, onState func(bool)) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetConnectTimeout(connectTimeout).
		SetSocketTimeout(socketTimeout).
		SetMaxPoolSize(maxPoolSize)

	// credentials from the environment win only when the URI carries none
	if cfg.User != "" && cfg.Password != "" && !strings.Contains(cfg.URI, "@") {
		opts.SetAuth(options.Credential{Username: cfg.User, Password: cfg.Password})
	}

	if onState != nil {
		opts.SetServerMonitor(&event.ServerMonitor{
			ServerHeartbeatSucceeded: func(*event.ServerHeartbeatSucceededEvent) { onState(true) },
			ServerHeartbeatFailed:    func(*event.ServerHeartbeatFailedEvent) { onState(false) },
		})
	}

	log.Info().Str("uri", Redact(cfg.URI)).Msg("connecting to mongodb")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, client.Database(cfg.Name), nil
}

// Disconnect tears down the client; safe to call with a nil client or more
// than once.
func Disconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), serverSelectionTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		if strings.Contains(err.Error(), "client is disconnected") {
			return nil
		}
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}

var credentialsRe = regexp.MustCompile(`//[^@/]+@`)

// Redact masks inline credentials in a connection URI for logging.
func Redact(uri string) string {
	return credentialsRe.ReplaceAllString(uri, "//****:****@")
}
