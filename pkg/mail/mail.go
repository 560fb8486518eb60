package mail

import (
	"github.com/sirupsen/logrus"
)

// Message represents an outgoing email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender sends emails. Handlers depend on this interface so delivery
// can be swapped without touching the call sites.
type Sender interface {
	Send(msg Message) error
}

// Config holds sender configuration
type Config struct {
	Mode        string // "dev" logs messages instead of sending them
	FromAddress string
	FromName    string
}

// LogSender writes messages to the log instead of delivering them.
// Used in development and as the default until an SMTP provider is wired.
type LogSender struct {
	from   string
	logger *logrus.Logger
}

// NewLogSender creates a log-backed sender
func NewLogSender(cfg Config, logger *logrus.Logger) *LogSender {
	return &LogSender{
		from:   cfg.FromName + " <" + cfg.FromAddress + ">",
		logger: logger,
	}
}

// Send logs the message
func (s *LogSender) Send(msg Message) error {
	s.logger.WithFields(logrus.Fields{
		"from":    s.from,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Mail queued (dev mode, not delivered)")

	return nil
}
