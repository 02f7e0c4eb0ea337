package mockserver

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type RequestLog struct {
	Method  string
	Target  string
	Status  int
	Elapsed time.Duration
}

// RequestLogger receives one entry per request once the response has been
// written. Elapsed includes any simulated delay.
type RequestLogger interface {
	LogRequest(entry RequestLog)
}

type LogrusRequestLogger struct{}

func (LogrusRequestLogger) LogRequest(entry RequestLog) {
	log.WithFields(log.Fields{
		"request_id": uuid.NewString(),
		"method":     entry.Method,
		"path":       entry.Target,
		"status":     entry.Status,
		"elapsed":    entry.Elapsed,
	}).Infof("%s %s - %d in %.4fs", entry.Method, entry.Target, entry.Status, entry.Elapsed.Seconds())
}
