package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	model "todo-items.com/todo-items/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Composer struct {
	templates *template.Template
}

func NewComposer() (*Composer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Composer{templates: templates}, nil
}

func (c *Composer) Registration(user *model.User) (Message, error) {
	body, err := c.render("user_registered.html", user)
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Welcome onboard, %s!", user.Username),
		HTML:    body,
	}, nil
}

// Overdue composes the notice sent to owner once item is marked overdue.
func (c *Composer) Overdue(item *model.TodoItem, owner *model.User) (Message, error) {
	body, err := c.render("todo_item_overdue.html", item)
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      owner.Email,
		Subject: fmt.Sprintf(`"%s" has passed the deadline`, item.Subject),
		HTML:    body,
	}, nil
}

func (c *Composer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
