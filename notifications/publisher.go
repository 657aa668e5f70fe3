package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Dosada05/league-standings/models"
)

const DefaultOpenMatchQueue = "match.open"

// Publisher hands an open match notification to the delivery transport.
type Publisher interface {
	PublishOpenMatch(ctx context.Context, n OpenMatchNotification) error
}

// AMQPPublisher publishes notifications to a durable RabbitMQ queue. The
// connection is opened lazily and re-dialed after the broker drops it.
type AMQPPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	if queue == "" {
		queue = DefaultOpenMatchQueue
	}
	return &AMQPPublisher{url: url, queue: queue}
}

func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	p.conn = conn
	return conn, nil
}

func (p *AMQPPublisher) PublishOpenMatch(ctx context.Context, n OpenMatchNotification) error {
	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare %s: %w", p.queue, err)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal open match notification: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Type:         "open_match",
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish to %s: %w", p.queue, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// Dispatcher is the process-wide consumer of the change feed: it dedups events
// with its own Filter and forwards open matches to the Publisher.
type Dispatcher struct {
	filter    *Filter
	publisher Publisher
	logger    *slog.Logger
}

func NewDispatcher(filter *Filter, publisher Publisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{filter: filter, publisher: publisher, logger: logger}
}

// Handle implements EventHandler.
func (d *Dispatcher) Handle(ctx context.Context, ev models.MatchChangedEvent) {
	n, ok := d.filter.Observe(ev)
	if !ok {
		return
	}
	if d.publisher == nil {
		d.logger.Info("open match notification (publisher disabled)", slog.Int("match_id", n.MatchID))
		return
	}
	if err := d.publisher.PublishOpenMatch(ctx, n); err != nil {
		d.logger.Error("failed to publish open match notification",
			slog.Int("match_id", n.MatchID), slog.Any("error", err))
		return
	}
	d.logger.Info("open match notification published",
		slog.Int("match_id", n.MatchID), slog.Int("division_id", n.DivisionID))
}
