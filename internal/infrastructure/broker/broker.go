package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ebridge-portal/internal/config"
	interfaces "ebridge-portal/internal/domain/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer subscribes to the activity fanout exchange and forwards events into the
// activity repository via a buffered batch writer.
type Consumer struct {
	cfg    config.RabbitMQConfig
	logger *logrus.Logger

	conn    *amqp.Connection
	streams []stream
	wg      sync.WaitGroup
	batcher *BatchWriter
}

type stream struct {
	ch  *amqp.Channel
	tag string
}

// deliveryReceipt settles a single delivery.
type deliveryReceipt struct {
	delivery amqp.Delivery
}

func (r deliveryReceipt) Ack() error {
	return r.delivery.Ack(false)
}

func (r deliveryReceipt) Nack(requeue bool) error {
	return r.delivery.Nack(false, requeue)
}

func NewConsumer(cfg config.RabbitMQConfig, repo interfaces.ActivityRepository, logger *logrus.Logger) (*Consumer, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if cfg.ActivityExchange == "" {
		return nil, errors.New("activity exchange is required")
	}
	batchCfg := BatchConfig{
		Size:    cfg.BatchSize,
		Timeout: cfg.BatchTimeout,
	}
	return &Consumer{
		cfg:     cfg,
		logger:  logger,
		batcher: NewBatchWriter(batchCfg, repo, logger),
	}, nil
}

// Start establishes the AMQP connection and begins consuming the activity exchange.
func (c *Consumer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	c.conn = conn
	c.batcher.Run(ctx)

	if err := c.startStream(ctx, c.cfg.ActivityExchange, c.cfg.Queue); err != nil {
		_ = c.Close(ctx)
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"exchange": c.cfg.ActivityExchange,
		"queue":    c.cfg.Queue,
	}).Info("rabbitmq consumer started")
	return nil
}

// Done is closed when the connection to the broker is lost.
func (c *Consumer) Done() <-chan *amqp.Error {
	if c.conn == nil {
		ch := make(chan *amqp.Error)
		close(ch)
		return ch
	}
	return c.conn.NotifyClose(make(chan *amqp.Error, 1))
}

// Close cancels consumption, writes and settles the pending batch while the channels
// are still open, then releases the connection.
func (c *Consumer) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, st := range c.streams {
		if err := st.ch.Cancel(st.tag, false); err != nil {
			c.logger.WithError(err).WithField("consumer", st.tag).Warn("failed to cancel consumer")
		}
	}
	c.wg.Wait()

	var err error
	if c.batcher != nil {
		err = c.batcher.Stop(ctx)
	}
	for _, st := range c.streams {
		_ = st.ch.Close()
	}
	c.streams = nil
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	return err
}

// startStream binds a durable queue so events published while the auditor is down are kept.
// An empty queue name falls back to an exclusive server-named queue.
func (c *Consumer) startStream(ctx context.Context, exchange, queueName string) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel for %s: %w", exchange, err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	durable := queueName != ""
	queue, err := ch.QueueDeclare(queueName, durable, !durable, !durable, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("declare queue for %s: %w", exchange, err)
	}
	if err := ch.QueueBind(queue.Name, "", exchange, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("bind queue %s to %s: %w", queue.Name, exchange, err)
	}
	// Deliveries stay unacked until their batch is written, so the prefetch window has to
	// hold a full batch.
	prefetch := max(c.cfg.Prefetch, BatchConfig{Size: c.cfg.BatchSize}.limit())
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("set qos for %s: %w", exchange, err)
	}
	tag := "auditor-" + queue.Name
	deliveries, err := ch.Consume(queue.Name, tag, false, !durable, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("start consume for %s: %w", exchange, err)
	}
	c.streams = append(c.streams, stream{ch: ch, tag: tag})
	c.wg.Add(1)
	go c.consumeLoop(ctx, exchange, deliveries)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, exchange string, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.WithField("exchange", exchange)
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			if err := c.handleDelivery(delivery); err != nil {
				log.WithError(err).Warn("failed to process message")
				if errors.Is(err, errBatchWrite) {
					continue
				}
				if nackErr := delivery.Nack(false, !errors.Is(err, errMalformed)); nackErr != nil {
					log.WithError(nackErr).Warn("failed to nack delivery")
				}
			}
		}
	}
}

var errMalformed = errors.New("malformed message")

// handleDelivery queues the event; the writer settles the delivery once the batch is
// stored. Errors other than errBatchWrite leave the delivery unsettled.
func (c *Consumer) handleDelivery(delivery amqp.Delivery) error {
	msg, err := decodeMessage(delivery.Body)
	if err != nil {
		return err
	}
	return c.batcher.AddEvent(msg.Event, deliveryReceipt{delivery: delivery})
}

func decodeMessage(body []byte) (*Message, error) {
	var payload Message
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %w", errMalformed, err)
	}
	if err := payload.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	return &payload, nil
}
