package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stackctl/internal/httpapi"
	"stackctl/pkg/types"
)

// statusService adapts the reporter to the HTTP surface. The activation set
// is resolved once when serve starts; it does not track config changes.
type statusService struct {
	app *app
}

func (s *statusService) Status(ctx context.Context) types.StatusResponse {
	return s.app.reporter.Collect(ctx, s.app.resolve(nil))
}

// runServer exposes the status view over HTTP until SIGINT/SIGTERM.
func runServer(ctx context.Context, a *app, opts *Options) error {
	httpapi.SetLogger(a.log)
	if opts.CORSEnabled {
		httpapi.SetCORSOptions(true, opts.CORSOrigins, nil, nil)
	}

	mux := httpapi.NewMux(&statusService{app: a})
	srv := &http.Server{Addr: opts.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", opts.Addr).Msg("status server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		a.log.Warn().Err(err).Msg("graceful shutdown")
	}
	return nil
}
