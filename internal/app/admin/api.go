package admin

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/form3tech-oss/mock-server/internal/app/fixtures"
	"github.com/form3tech-oss/mock-server/internal/app/httpresponse"
	"github.com/form3tech-oss/mock-server/internal/app/metrics"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type fixtureSummary struct {
	File    string `json:"file"`
	Enabled bool   `json:"enabled"`
	Method  string `json:"method,omitempty"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

type api struct {
	store *fixtures.Store
}

// NewAPI builds the admin routes. They live on their own listener so that no
// fixture path is ever shadowed.
func NewAPI(store *fixtures.Store, recorder *metrics.Recorder) *echo.Echo {
	a := api{store: store}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/ready", a.readinessHandler)
	e.GET("/fixtures", a.fixturesHandler)
	e.GET("/metrics", echo.WrapHandler(recorder.Handler()))

	return e
}

type Server struct {
	echo     *echo.Echo
	listener net.Listener
}

func Serve(host string, port int, store *fixtures.Store, recorder *metrics.Recorder) (*Server, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", address)
	}

	s := &Server{
		echo:     NewAPI(store, recorder),
		listener: listener,
	}
	s.echo.Listener = listener

	go func() {
		if err := s.echo.Start(""); err != nil && err != http.ErrServerClosed {
			log.Error(err)
		}
	}()

	log.Infof("admin API listening on http://%s", listener.Addr().String())
	return s, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (a *api) readinessHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (a *api) fixturesHandler(c echo.Context) error {
	files, err := a.store.List()
	if err != nil {
		httpresponse.Errorf(c.Response(), http.StatusInternalServerError, "unable to list fixtures. %s", err.Error())
		return nil
	}

	summaries := make([]fixtureSummary, 0, len(files))
	for _, file := range files {
		summary := fixtureSummary{File: file}

		fixture, err := a.store.Load(file)
		if err != nil {
			summary.Error = err.Error()
			summaries = append(summaries, summary)
			continue
		}

		summary.Enabled = fixture.Enabled
		if fixture.Request.Method != nil {
			summary.Method = *fixture.Request.Method
		}
		if fixture.Request.Path != nil {
			summary.Path = *fixture.Request.Path
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"fixtures": summaries,
	})
}
