package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"storefront-catalog/internal/config"
)

const ProductsCollection = "products"

// Connect abre el cliente de MongoDB y verifica la conexión con ping.
// Reintenta con backoff exponencial para tolerar que el contenedor de la base
// todavía esté levantando.
func Connect(cfg *config.MongoConfig) (*mongo.Client, error) {
	if cfg == nil {
		return nil, errors.New("nil mongo config")
	}

	const (
		maxAttempts = 5
		baseDelay   = 500 * time.Millisecond
	)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(50).
		SetServerSelectionTimeout(5 * time.Second)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := mongo.Connect(context.Background(), opts)
		if err != nil {
			lastErr = err
			sleepWithBackoff(attempt, baseDelay)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = client.Ping(ctx, readpref.Primary())
		cancel()
		if lastErr == nil {
			return client, nil
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("mongo ping failed, retrying")
		_ = client.Disconnect(context.Background())
		sleepWithBackoff(attempt, baseDelay)
	}

	return nil, fmt.Errorf("failed to connect to mongo after %d attempts: %w", maxAttempts, lastErr)
}

func sleepWithBackoff(attempt int, base time.Duration) {
	d := base << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	time.Sleep(d)
}
