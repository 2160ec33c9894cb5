package board

import (
	log "github.com/sirupsen/logrus"
)

// Notifier receives the user-visible outcome of each intent. The
// browser front end renders these as transient, dismissible toasts;
// the CLI logs them. Failures are surfaced exactly once and never
// retried.
type Notifier interface {
	Success(summary string)
	Failure(summary string, err error)
}

// LogNotifier writes notifications to a logrus logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) logger() *log.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return log.StandardLogger()
}

func (n LogNotifier) Success(summary string) {
	n.logger().Info(summary)
}

func (n LogNotifier) Failure(summary string, err error) {
	n.logger().WithField("error", err.Error()).Error(summary)
}
