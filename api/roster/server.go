package roster

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mpelletier/rosterd/core/roster/runlog"
)

// StartServer serves the run-log query endpoint on addr until ctx is
// cancelled. The API gets a dedicated mux so an operator can bind it to a
// different port than the metrics endpoint, and a shutdown drains in-flight
// queries before the store goes away.
func StartServer(ctx context.Context, addr string, store runlog.LogStore, token string) error {
	mux := http.NewServeMux()
	mux.Handle("/api/roster/runs", NewRunLogHandler(store, token))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
