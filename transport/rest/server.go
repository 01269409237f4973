package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

// route segments per session kind
var kindSegments = map[entity.Kind]string{
	entity.KindTicTacToe: "games",
	entity.KindRPS:       "rps",
}

// NewRouter - registers every game route on a new router.
func NewRouter(logger *slog.Logger, directory sessionDirectory, publicURL string) http.Handler {
	log := logger.With("component", "rest")

	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		log.Error("panic in handler", "method", r.Method, "path", r.URL.Path, "panic", v)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}

	ping := NewPingHandler()
	mux.GET("/ping", ping.PingHandler)

	games := NewGameHandler(logger, directory, publicURL)
	for kind, segment := range kindSegments {
		base := "/api/" + segment

		mux.GET(base, games.List(kind))
		mux.POST(base, games.Create(kind))
		mux.GET(base+"/:id", games.Get(kind))
		mux.POST(base+"/:id/join", games.Join(kind))
		mux.POST(base+"/:id/move", games.Move(kind))
		mux.DELETE(base+"/:id/leave", games.Leave(kind))
		mux.GET(base+"/:id/qr", games.QR(kind))
	}
	mux.POST("/api/rps/:id/next", games.NextRound())
	mux.DELETE("/api/rooms/:room/sessions", games.ClearRoom())

	return mux
}

// Start - serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}

		return nil
	}
}
