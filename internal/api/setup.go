package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gotoplanb/kzrk/internal/core"
	"github.com/rs/zerolog/log"
	"io"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type API struct {
	service *core.Service
}

// NewRouter wires every route onto a mux router wrapped with access logging,
// panic recovery and CORS.
func NewRouter(service *core.Service, allowedOrigins []string) http.Handler {
	a := &API{service: service}
	r := mux.NewRouter()

	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/airports", a.AirportsHandler).Methods(http.MethodGet)
	r.HandleFunc("/cargo", a.CargoHandler).Methods(http.MethodGet)

	r.HandleFunc("/rooms", a.CreateRoomHandler).Methods(http.MethodPost)
	r.HandleFunc("/rooms", a.ListRoomsHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{room}/join", a.JoinRoomHandler).Methods(http.MethodPost)

	p := r.PathPrefix("/rooms/{room}/players/{player}").Subrouter()
	p.HandleFunc("/leave", a.LeaveRoomHandler).Methods(http.MethodPost)
	p.HandleFunc("/start", a.StartGameHandler).Methods(http.MethodPost)
	p.HandleFunc("/state", a.StateHandler).Methods(http.MethodGet)
	p.HandleFunc("/travel", a.TravelHandler).Methods(http.MethodPost)
	p.HandleFunc("/trade", a.TradeHandler).Methods(http.MethodPost)
	p.HandleFunc("/fuel", a.FuelHandler).Methods(http.MethodPost)
	p.HandleFunc("/messages", a.PostMessageHandler).Methods(http.MethodPost)
	p.HandleFunc("/messages", a.MessagesHandler).Methods(http.MethodGet)
	p.HandleFunc("/feed", a.FeedHandler).Methods(http.MethodGet)

	r.HandleFunc("/players/{name}/sessions", a.SessionsHandler).Methods(http.MethodGet)

	var h http.Handler = r
	h = handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(h)
	return handlers.CustomLoggingHandler(io.Discard, h, logRequest)
}

func logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	log.Info().
		Str("method", p.Request.Method).
		Str("path", p.URL.Path).
		Int("status", p.StatusCode).
		Int("size", p.Size).
		Dur("duration", time.Since(p.TimeStamp)).
		Msg("Request")
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error().Msg(fmt.Sprint(v...))
}

// Serve blocks until ctx is done, then shuts the server down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
