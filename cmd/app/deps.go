package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/portalevent/portal-api/internal/config"
	"github.com/portalevent/portal-api/internal/notify"
)

// notifier is the dispatch side of the notification transport together with
// whatever must be torn down on exit.
type notifier struct {
	dispatcher interface{ Dispatch(n notify.Notification) }
	closers    []func()
}

func (n *notifier) Dispatch(msg notify.Notification) {
	n.dispatcher.Dispatch(msg)
}

func (n *notifier) Close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		n.closers[i]()
	}
}

func newRouter(conf *config.AppConfig) (*notify.Router, error) {
	router := &notify.Router{}

	if conf.SMTP.Host != "" && conf.SMTP.From != "" {
		router.Email = notify.NewMailer(conf.SMTP)
	} else {
		zap.L().Warn("smtp is not configured, emails are disabled")
	}

	if conf.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(conf.Telegram)
		if err != nil {
			return nil, fmt.Errorf("notify.NewTelegram -> %w", err)
		}
		router.Chat = tg
	} else {
		zap.L().Warn("telegram is not configured, admin chat notifications are disabled")
	}

	return router, nil
}

func startNotifier(ctx context.Context, conf *config.AppConfig) (*notifier, error) {
	router, err := newRouter(conf)
	if err != nil {
		return nil, err
	}

	return startTransport(ctx, conf, router)
}

// startTransport wires the configured transport. With rabbitmq the API
// process publishes and also runs the consumer that performs delivery, which
// stops consuming once ctx is done. The memory queue outlives ctx so Close
// can still deliver what is queued.
func startTransport(ctx context.Context, conf *config.AppConfig, router notify.Deliverer) (*notifier, error) {
	switch conf.Notify.Transport {
	case config.TransportRabbitMQ:
		publisher, err := notify.NewRabbitPublisher(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			return nil, fmt.Errorf("notify.NewRabbitPublisher -> %w", err)
		}

		consumer, err := notify.NewRabbitConsumer(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange, conf.RabbitMQ.Queue, router)
		if err != nil {
			publisher.Close()
			return nil, fmt.Errorf("notify.NewRabbitConsumer -> %w", err)
		}
		if err = consumer.Start(ctx); err != nil {
			consumer.Close()
			publisher.Close()
			return nil, fmt.Errorf("consumer.Start -> %w", err)
		}

		return &notifier{
			dispatcher: publisher,
			closers:    []func(){consumer.Close, publisher.Close},
		}, nil

	case config.TransportMemory, "":
		queue := notify.NewQueue(router, conf.Notify.QueueSize, conf.Notify.Workers)
		queue.Start(context.Background())

		return &notifier{
			dispatcher: queue,
			closers:    []func(){queue.Stop},
		}, nil

	default:
		return nil, fmt.Errorf("unknown notify transport %q", conf.Notify.Transport)
	}
}

// openRedis returns a nil client when no URL is configured.
func openRedis(ctx context.Context, conf *config.RedisConfig) (*redis.Client, error) {
	if conf.URL == "" {
		zap.L().Warn("redis is not configured, ticket lookup is not rate limited")
		return nil, nil
	}

	opts, err := redis.ParseURL(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL -> %w", err)
	}

	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return client, nil
}
