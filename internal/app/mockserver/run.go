package mockserver

import (
	"context"
	"time"

	"github.com/form3tech-oss/mock-server/internal/app/admin"
	"github.com/form3tech-oss/mock-server/internal/app/configuration"
	"github.com/form3tech-oss/mock-server/internal/app/monitor"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run serves fixtures until ctx ends or the fixture directory changes. It
// reports true when the caller should start a new loop with a fresh
// configuration.
func Run(ctx context.Context, config configuration.Config, opts ...Option) (bool, error) {
	server := NewServer(config, opts...)
	stop := newStopSignal()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	watcher := monitor.New(server.store, func() {
		server.metrics.ReloadSignaled()
		stop.Reload()
	}, monitor.WithInterval(config.PollInterval))
	if err := watcher.Start(watchCtx); err != nil {
		return false, err
	}

	if err := server.Start(); err != nil {
		return false, err
	}
	log.Infof("Starting mock server on http://%s serving %s...", server.Addr(), server.store.Dir())

	var adminServer *admin.Server
	if config.AdminPort > 0 {
		var err error
		adminServer, err = admin.Serve(config.Host, config.AdminPort, server.store, server.metrics)
		if err != nil {
			shutdown(server, nil)
			return false, errors.Wrap(err, "start admin API")
		}
	}

	select {
	case <-ctx.Done():
		stop.Stop()
	case <-stop.Done():
	}

	reload := stop.Reloading() && ctx.Err() == nil
	if !reload {
		log.Info("Stopping server...")
	}

	shutdown(server, adminServer)
	return reload, nil
}

func shutdown(server *Server, adminServer *admin.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if adminServer != nil {
		if err := adminServer.Shutdown(ctx); err != nil {
			log.Error(err)
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error(err)
	}
}
