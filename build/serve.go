package build

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler returns HTTP handler serving current spritesheet, stubs and
// pipeline metrics.
func (b *Builder) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/metrics", promhttp.HandlerFor(b.metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP)

	r.Get("/stubs/*", func(w http.ResponseWriter, r *http.Request) {
		rel := chi.URLParam(r, "*")
		data, ok := b.Stub(rel)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if ct := mime.TypeByExtension(path.Ext(rel)); len(ct) > 0 {
			w.Header().Set("Content-Type", ct)
		}
		w.Write(data)
	})

	r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
		name, markup := b.Sheet()
		if chi.URLParam(r, "name") != name {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write([]byte(markup))
	})
	return r
}

// Serve runs HTTP server until context is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(log),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Server shutdown", zap.Error(err))
		}
	}()

	log.Info("Serving spritesheet", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
