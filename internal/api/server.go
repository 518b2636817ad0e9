package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/pkg/chiext"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns the HTTP handler serving the API.
func NewRouter(d Dispatcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger(slog.Default()))
	r.Use(middleware.Recoverer)

	Register(humachi.New(r, NewConfig()), d)

	return r
}

type Server struct {
	addr    string
	handler http.Handler
}

func NewServer(addr string, d Dispatcher) Server {
	return Server{
		addr:    addr,
		handler: NewRouter(d),
	}
}

func (s Server) String() string {
	return "api.Server"
}

func (s Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	slog.Info("Serving API", "address", ln.Addr().String())

	errC := make(chan error, 1)
	go func() { errC <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
