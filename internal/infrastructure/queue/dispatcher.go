package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freshproduce/marketplace/internal/api/metrics"
	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/infrastructure/mail"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sender delivers one email.
type Sender interface {
	Send(msg mail.Message) error
}

// MailDispatcher sends order confirmations on a fixed pool of workers so that
// the request that placed the order never waits on SMTP.
type MailDispatcher struct {
	queue   chan mail.Message
	sender  Sender
	workers int
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewMailDispatcher creates a MailDispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &MailDispatcher{
		queue:   make(chan mail.Message, channelBuffer),
		sender:  sender,
		workers: numWorkers,
		log:     log,
	}
}

// Start launches all worker goroutines. When ctx is cancelled the workers
// deliver what is already queued and then stop.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (d *MailDispatcher) Wait() {
	d.wg.Wait()
}

// OrderPlaced queues the confirmation email for order. It never blocks: when
// the queue is full the email is dropped and logged.
func (d *MailDispatcher) OrderPlaced(order *domain.Order, product *domain.Product) {
	msg, err := mail.OrderConfirmation(order, product)
	if err != nil {
		d.log.Error().Err(err).Str("order_id", order.ID).Msg("failed to render order confirmation")
		metrics.MailSentTotal.WithLabelValues("failed").Inc()
		return
	}
	d.Enqueue(msg)
}

// Enqueue adds msg to the queue without blocking.
func (d *MailDispatcher) Enqueue(msg mail.Message) bool {
	select {
	case d.queue <- msg:
		metrics.MailQueueDepth.Inc()
		return true
	default:
		metrics.MailSentTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Strs("to", msg.To).Msg("mail queue full, email dropped")
		return false
	}
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id)
			return
		case msg := <-d.queue:
			metrics.MailQueueDepth.Dec()
			d.deliver(id, msg)
		}
	}
}

func (d *MailDispatcher) drain(id int) {
	for {
		select {
		case msg := <-d.queue:
			metrics.MailQueueDepth.Dec()
			d.deliver(id, msg)
		default:
			return
		}
	}
}

func (d *MailDispatcher) deliver(id int, msg mail.Message) {
	start := time.Now()
	err := d.sender.Send(msg)
	metrics.MailSendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.MailSentTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Strs("to", msg.To).
			Int("worker_id", id).
			Msg("order confirmation failed")
		return
	}
	metrics.MailSentTotal.WithLabelValues("sent").Inc()
	d.log.Info().Strs("to", msg.To).Int("worker_id", id).Msg("order confirmation sent")
}
