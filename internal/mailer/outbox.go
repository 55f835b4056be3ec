package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

// Outbox writes messages as JSON objects for a downstream relay.
type Outbox struct {
	storage model.Storage
	logger  *logger.Logger
}

func NewOutbox(storage model.Storage, logger *logger.Logger) *Outbox {
	return &Outbox{
		storage: storage,
		logger:  logger,
	}
}

// Key returns the object key of msg.
func Key(msg Message) string {
	return fmt.Sprintf("outbox/%s/%s.json", msg.Kind, msg.ID)
}

func (o *Outbox) Deliver(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := Key(msg)
	if err := o.storage.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		o.logger.Error("Mail outbox: failed to store message",
			"key", key,
			"error", err.Error())
		return fmt.Errorf("failed to store message: %w", err)
	}

	o.logger.Debug("Mail outbox: message stored",
		"key", key,
		"kind", msg.Kind)

	return nil
}

// Log writes messages to the application log.
type Log struct {
	logger *logger.Logger
}

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Deliver(_ context.Context, msg Message) error {
	l.logger.Info("Mailer: message",
		"id", msg.ID,
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
		"link", msg.Link)
	return nil
}
