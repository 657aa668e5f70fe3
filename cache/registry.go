// Package cache puts a Redis read-through cache in front of the player
// directory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/league-standings/models"
)

const (
	DefaultRegistryTTL = 5 * time.Minute
	keyPrefix          = "league:roster"
)

// Directory is the read-only registration source being cached.
type Directory interface {
	ListRoster(ctx context.Context, tournamentID, divisionID int) ([]models.RosterEntry, error)
	IsRegistered(ctx context.Context, tournamentID, divisionID, playerID int) (bool, error)
}

// RegistryCache serves rosters from Redis and falls back to the directory on
// a miss. A nil client, or any Redis failure, degrades to reading the
// directory directly.
type RegistryCache struct {
	source Directory
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRegistryCache(source Directory, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RegistryCache {
	if ttl <= 0 {
		ttl = DefaultRegistryTTL
	}
	return &RegistryCache{source: source, rdb: rdb, ttl: ttl, logger: logger}
}

func rosterKey(tournamentID, divisionID int) string {
	return fmt.Sprintf("%s:%d:%d", keyPrefix, tournamentID, divisionID)
}

func (c *RegistryCache) ListRoster(ctx context.Context, tournamentID, divisionID int) ([]models.RosterEntry, error) {
	if c.rdb == nil {
		return c.source.ListRoster(ctx, tournamentID, divisionID)
	}

	key := rosterKey(tournamentID, divisionID)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var roster []models.RosterEntry
		if jsonErr := json.Unmarshal(raw, &roster); jsonErr == nil {
			return roster, nil
		}
		c.logger.Warn("discarding undecodable roster cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("roster cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	roster, err := c.source.ListRoster(ctx, tournamentID, divisionID)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(roster); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("roster cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return roster, nil
}

// IsRegistered answers from the cached roster when caching is enabled. A
// player missing from the cached roster is checked against the directory, and
// a registration the cache has not seen yet drops the stale entry.
func (c *RegistryCache) IsRegistered(ctx context.Context, tournamentID, divisionID, playerID int) (bool, error) {
	if c.rdb == nil {
		return c.source.IsRegistered(ctx, tournamentID, divisionID, playerID)
	}
	roster, err := c.ListRoster(ctx, tournamentID, divisionID)
	if err != nil {
		return false, err
	}
	for _, e := range roster {
		if e.PlayerID == playerID {
			return true, nil
		}
	}

	ok, err := c.source.IsRegistered(ctx, tournamentID, divisionID, playerID)
	if err != nil || !ok {
		return false, err
	}
	if err := c.Invalidate(ctx, tournamentID, divisionID); err != nil {
		c.logger.Warn("stale roster cache entry kept", slog.Int("player_id", playerID), slog.Any("error", err))
	}
	return true, nil
}

// Invalidate drops the cached roster of one division.
func (c *RegistryCache) Invalidate(ctx context.Context, tournamentID, divisionID int) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, rosterKey(tournamentID, divisionID)).Err(); err != nil {
		return fmt.Errorf("invalidate roster cache: %w", err)
	}
	return nil
}
