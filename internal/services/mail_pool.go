package services

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"todo-items.com/todo-items/internal/email"
)

// MailPool delivers queued messages on a fixed set of workers so callers
// never wait on SMTP.
type MailPool struct {
	mu     sync.RWMutex
	closed bool
	queue  chan email.Message
	wg     sync.WaitGroup
	sender email.Sender
	logger *log.Logger
}

func NewMailPool(sender email.Sender, workers int, queueSize int, logger *log.Logger) *MailPool {
	p := &MailPool{
		queue:  make(chan email.Message, queueSize),
		sender: sender,
		logger: logger,
	}

	for i := 1; i <= workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Enqueue reports false when the queue is full or the pool is shut down.
func (p *MailPool) Enqueue(msg email.Message) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}

	select {
	case p.queue <- msg:
		return true
	default:
		return false
	}
}

func (p *MailPool) worker(workerID int) {
	defer p.wg.Done()

	p.logger.Debug("mail worker started", "worker", workerID)

	for msg := range p.queue {
		if err := p.sender.Send(context.Background(), msg); err != nil {
			p.logger.Error("failed to send email", "worker", workerID, "to", msg.To, "err", err)
			continue
		}
		p.logger.Info("email sent", "worker", workerID, "to", msg.To, "subject", msg.Subject)
	}

	p.logger.Debug("mail worker stopped", "worker", workerID)
}

// Shutdown stops accepting messages and waits for queued ones to be
// delivered or for ctx to end.
func (p *MailPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("mail pool shut down cleanly")
	case <-ctx.Done():
		p.logger.Warn("mail pool shutdown timed out")
	}
}
