package httpresponse

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Error answers with a plain-text body made of message.
func Error(res http.ResponseWriter, status int, message string) {
	log.WithField("status", status).Debug(message)

	res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	res.Header().Set("X-Content-Type-Options", "nosniff")
	res.WriteHeader(status)
	fmt.Fprintln(res, message)
}

func Errorf(res http.ResponseWriter, status int, format string, a ...interface{}) {
	Error(res, status, fmt.Sprintf(format, a...))
}
