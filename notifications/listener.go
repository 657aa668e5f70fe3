package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Dosada05/league-standings/models"
)

// MatchChangedChannel is the Postgres NOTIFY channel written by the
// matches_notify_change trigger.
const MatchChangedChannel = "match_changed"

const (
	minReconnectInterval = 5 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

var ErrInvalidEvent = errors.New("invalid match change event")

// EventHandler receives every decoded change event. Handlers run on the
// listener goroutine and must not block for long.
type EventHandler func(ctx context.Context, ev models.MatchChangedEvent)

// Listener consumes the match change feed over a dedicated lib/pq connection.
// Delivery is at least once: events can be duplicated, and events raised while
// the connection is down are lost, so consumers must tolerate both.
type Listener struct {
	dsn      string
	logger   *slog.Logger
	handlers []EventHandler
}

func NewListener(dsn string, logger *slog.Logger, handlers ...EventHandler) *Listener {
	return &Listener{dsn: dsn, logger: logger, handlers: handlers}
}

// Run blocks until ctx is cancelled. pq.Listener reconnects on its own; Run
// only returns an error when the initial LISTEN fails.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			l.logger.Warn("match listener connection problem", slog.Int("event", int(ev)), slog.Any("error", err))
		case pq.ListenerEventReconnected:
			l.logger.Info("match listener reconnected")
		}
	})
	defer func() {
		if err := listener.Close(); err != nil {
			l.logger.Error("failed to close match listener", slog.Any("error", err))
		}
	}()

	if err := listener.Listen(MatchChangedChannel); err != nil {
		return fmt.Errorf("listen %s: %w", MatchChangedChannel, err)
	}
	l.logger.Info("match listener started", slog.String("channel", MatchChangedChannel))

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("match listener stopped")
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// Sent after a reconnect: notifications may have been missed.
				l.logger.Warn("match listener lost connection, some change events may be missing")
				continue
			}
			ev, err := ParseEvent([]byte(n.Extra))
			if err != nil {
				l.logger.Warn("failed to parse match change event", slog.String("payload", n.Extra), slog.Any("error", err))
				continue
			}
			l.Dispatch(ctx, ev)
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Warn("match listener ping failed", slog.Any("error", err))
				}
			}()
		}
	}
}

// Dispatch hands ev to every registered handler in order.
func (l *Listener) Dispatch(ctx context.Context, ev models.MatchChangedEvent) {
	for _, h := range l.handlers {
		h(ctx, ev)
	}
}

// ParseEvent decodes a NOTIFY payload produced by the matches trigger.
func ParseEvent(payload []byte) (models.MatchChangedEvent, error) {
	var ev models.MatchChangedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if ev.MatchID <= 0 {
		return ev, fmt.Errorf("%w: missing match_id", ErrInvalidEvent)
	}
	switch ev.Op {
	case models.ChangeInsert, models.ChangeUpdate, models.ChangeDelete:
	default:
		return ev, fmt.Errorf("%w: unknown op %q", ErrInvalidEvent, ev.Op)
	}
	if !ev.Status.Valid() {
		return ev, fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, ev.Status)
	}
	return ev, nil
}
