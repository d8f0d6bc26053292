package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

// Server runs an Echo instance until its context is cancelled.
type Server struct {
	echo            *echo.Echo
	addr            string
	shutdownTimeout time.Duration
	log             zerolog.Logger
}

func NewServer(e *echo.Echo, port string, log zerolog.Logger) *Server {
	return &Server{
		echo:            e,
		addr:            ":" + port,
		shutdownTimeout: defaultShutdownTimeout,
		log:             log,
	}
}

// Run serves until ctx is done, then drains in-flight requests. It returns
// nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
