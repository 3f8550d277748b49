package services

import (
	"github.com/charmbracelet/log"

	"todo-items.com/todo-items/internal/email"
	model "todo-items.com/todo-items/internal/models"
)

type Notifier interface {
	UserRegistered(user *model.User)
	TodoItemOverdue(item *model.TodoItem, owner *model.User)
}

// MailNotifier turns notifications into emails handed to a MailPool.
type MailNotifier struct {
	composer *email.Composer
	pool     *MailPool
	logger   *log.Logger
}

func NewMailNotifier(composer *email.Composer, pool *MailPool, logger *log.Logger) *MailNotifier {
	return &MailNotifier{
		composer: composer,
		pool:     pool,
		logger:   logger,
	}
}

func (n *MailNotifier) UserRegistered(user *model.User) {
	msg, err := n.composer.Registration(user)
	if err != nil {
		n.logger.Error("failed to compose registration email", "user", user.ID, "err", err)
		return
	}
	n.enqueue(msg)
}

func (n *MailNotifier) TodoItemOverdue(item *model.TodoItem, owner *model.User) {
	if owner == nil {
		n.logger.Warn("overdue todo item has no owner loaded", "todo_item", item.ID)
		return
	}

	msg, err := n.composer.Overdue(item, owner)
	if err != nil {
		n.logger.Error("failed to compose overdue email", "todo_item", item.ID, "err", err)
		return
	}
	n.enqueue(msg)
}

func (n *MailNotifier) enqueue(msg email.Message) {
	if !n.pool.Enqueue(msg) {
		n.logger.Warn("mail queue is full, dropping email", "to", msg.To, "subject", msg.Subject)
	}
}
