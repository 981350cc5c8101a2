package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	exchangeKind     = "topic"
	routingKeyPrefix = "notify."
	publishTimeout   = 5 * time.Second
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitPublisher dispatches notifications by publishing them to a topic
// exchange. Delivery happens in whichever process runs a RabbitConsumer.
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, ch, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Dispatch(n Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		logDeliveryFailure(n, fmt.Errorf("json.Marshal -> %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKeyPrefix+string(n.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		logDeliveryFailure(n, fmt.Errorf("channel.PublishWithContext -> %w", err))
	}
}

func (p *RabbitPublisher) Close() {
	if ch, ok := p.channel.(*amqp.Channel); ok {
		_ = ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// RabbitConsumer reads published notifications and delivers them. Failed
// deliveries are logged and dropped, never requeued.
type RabbitConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queue     string
	deliverer Deliverer
}

func NewRabbitConsumer(url, exchange, queue string, deliverer Deliverer) (*RabbitConsumer, error) {
	conn, ch, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("ch.QueueDeclare -> %w", err)
	}

	if err = ch.QueueBind(q.Name, routingKeyPrefix+"*", exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("ch.QueueBind -> %w", err)
	}

	return &RabbitConsumer{conn: conn, channel: ch, queue: q.Name, deliverer: deliverer}, nil
}

// Start consumes until ctx is cancelled or the channel closes.
func (c *RabbitConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("c.channel.Consume -> %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					zap.L().Info("notification consumer channel closed")
					return
				}
				c.handle(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *RabbitConsumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *RabbitConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var n Notification
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		zap.L().Warn("dropping malformed notification", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	deliverCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := c.deliverer.Deliver(deliverCtx, n); err != nil {
		logDeliveryFailure(n, err)
		_ = msg.Nack(false, false)
		return
	}

	_ = msg.Ack(false)
}

func dial(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp.Dial -> %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("conn.Channel -> %w", err)
	}

	if err = ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("ch.ExchangeDeclare -> %w", err)
	}

	return conn, ch, nil
}
