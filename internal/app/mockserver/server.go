package mockserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/form3tech-oss/mock-server/internal/app/configuration"
	"github.com/form3tech-oss/mock-server/internal/app/fixtures"
	"github.com/form3tech-oss/mock-server/internal/app/httpresponse"
	"github.com/form3tech-oss/mock-server/internal/app/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const MockNotFound = "Mock file not found"

type Option func(*Server)

func WithRequestLogger(logger RequestLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Server) {
		s.metrics = recorder
	}
}

// WithListening registers a callback invoked with the bound address once the
// server accepts connections.
func WithListening(fn func(addr string)) Option {
	return func(s *Server) {
		s.listening = fn
	}
}

// Server answers every request from the fixtures of one directory.
type Server struct {
	config     configuration.Config
	store      *fixtures.Store
	dispatcher *Dispatcher
	logger     RequestLogger
	metrics    *metrics.Recorder
	listening  func(addr string)

	echo     *echo.Echo
	http     *http.Server
	listener net.Listener
}

func NewServer(config configuration.Config, opts ...Option) *Server {
	s := &Server{
		config: config,
		store:  fixtures.NewStore(config.MockDir),
		logger: LogrusRequestLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatcher = NewDispatcher(NewMatcher(s.store, s.metrics))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(middleware.Recover())
	// every method and path belongs to the fixtures, so the router is skipped
	e.Pre(func(echo.HandlerFunc) echo.HandlerFunc {
		return s.mockHandler
	})
	s.echo = e

	s.http = &http.Server{
		Handler: e,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start binds the configured address and serves in the background.
func (s *Server) Start() error {
	address := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", address)
	}
	s.listener = listener
	s.http.Addr = listener.Addr().String()

	go func() {
		if err := s.http.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error(err)
		}
	}()

	if s.listening != nil {
		s.listening(s.Addr())
	}
	return nil
}

func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown waits for in-flight requests, delayed ones included, until ctx
// ends and then drops the remaining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if err != nil {
		log.Warnf("forcing mock server close. %s", err.Error())
		return s.http.Close()
	}
	return nil
}

func (s *Server) mockHandler(c echo.Context) error {
	start := time.Now()
	req := c.Request()

	result := s.dispatcher.Dispatch(NewRequestDescriptor(req))
	status := s.write(c.Response(), result)

	elapsed := time.Since(start)
	s.logger.LogRequest(RequestLog{
		Method:  req.Method,
		Target:  req.RequestURI,
		Status:  status,
		Elapsed: elapsed,
	})
	s.metrics.ObserveRequest(result.Outcome.String(), elapsed)
	return nil
}

func (s *Server) write(res http.ResponseWriter, result DispatchResult) int {
	if result.Outcome == NotFound {
		httpresponse.Error(res, http.StatusNotFound, MockNotFound)
		return http.StatusNotFound
	}

	planned := result.Response
	if planned.Delay > 0 {
		time.Sleep(planned.Delay)
	}

	header := res.Header()
	for _, h := range planned.Headers {
		header.Add(h.Name, h.Value)
	}
	if !planned.hasHeader("Content-Type") {
		// a nil entry stops net/http from sniffing one
		header["Content-Type"] = nil
	}

	res.WriteHeader(planned.StatusCode)
	if len(planned.Body) > 0 {
		if _, err := res.Write(planned.Body); err != nil {
			log.Warnf("unable to write response for %s. %s", result.File, err.Error())
		}
	}
	return planned.StatusCode
}
