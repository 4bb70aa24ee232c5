package reminders

import (
	"context"
	"log"
)

type Message struct {
	Kind  string
	Title string
	Body  string
}

func (message Message) Text() string {
	if message.Title == "" {
		return message.Body
	}
	if message.Body == "" {
		return message.Title
	}
	return message.Title + "\n" + message.Body
}

// Notifier delivers a reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

// LogNotifier writes reminders to the process log; used when no delivery
// channel is configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (notifier *LogNotifier) Notify(_ context.Context, message Message) error {
	notifier.logger.Printf("reminder [%s]: %s", message.Kind, message.Text())
	return nil
}
