package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

type connection interface {
	IsClosed() bool
	Close() error
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	IsClosed() bool
	Close() error
}

type dialFunc func(url string) (connection, channel, error)

func dialAMQP(url string) (connection, channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return conn, ch, nil
}

// RabbitPublisher publishes events as JSON to a durable topic exchange. A
// closed connection or channel is re-dialed on the next Publish.
type RabbitPublisher struct {
	url      string
	exchange string
	log      *zap.Logger
	dial     dialFunc

	mu     sync.Mutex
	conn   connection
	ch     channel
	closed bool
}

func NewRabbitPublisher(url, exchange string, log *zap.Logger) (*RabbitPublisher, error) {
	return newRabbitPublisher(url, exchange, log, dialAMQP)
}

func newRabbitPublisher(url, exchange string, log *zap.Logger, dial dialFunc) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: url, exchange: exchange, log: log, dial: dial}
	if err := p.reconnect(); err != nil {
		return nil, err
	}
	log.Info("connected to RabbitMQ", zap.String("exchange", exchange))
	return p, nil
}

// reconnect replaces the connection and channel. Callers hold p.mu.
func (p *RabbitPublisher) reconnect() error {
	p.release()
	conn, ch, err := p.dial(p.url)
	if err != nil {
		return err
	}
	err = ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}
	p.conn, p.ch = conn, ch
	go p.watch(ch.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

func (p *RabbitPublisher) watch(notify chan *amqp.Error) {
	if err, ok := <-notify; ok && err != nil {
		p.log.Warn("rabbitmq channel closed, reconnecting on next publish",
			zap.Int("code", err.Code), zap.String("reason", err.Reason))
	}
}

func (p *RabbitPublisher) release() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *RabbitPublisher) healthy() bool {
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

func (p *RabbitPublisher) Publish(ctx context.Context, e StatusChanged) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if !p.healthy() {
		if err := p.reconnect(); err != nil {
			return fmt.Errorf("publish %s: %w", e.RoutingKey(), err)
		}
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		if err = p.reconnect(); err == nil {
			err = p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, msg)
		}
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.RoutingKey(), err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.release()
	return nil
}
