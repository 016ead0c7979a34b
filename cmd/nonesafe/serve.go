package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/reoring/nonesafe"
	"github.com/reoring/nonesafe/internal/metrics"
	"github.com/reoring/nonesafe/internal/schemafile"
	"github.com/reoring/nonesafe/middleware"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve fill and schema endpoints for every declared type over HTTP",
		Long: `Routes:
  GET  /types                 declared type names
  GET  /types/{name}/schema   JSON Schema of a type
  POST /types/{name}/fill     fill the JSON body (?mode=canonical|preserve|full)
  GET  /metrics               Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := parseOptFrom(a.cfg)
			if err != nil {
				return err
			}
			holder, err := schemafile.NewHolder(a.schemaPath, a.log)
			if err != nil {
				return err
			}
			defer holder.Stop()
			m := metrics.New()
			if watch {
				if err := holder.WatchFile(); err != nil {
					return err
				}
			}

			srv := &http.Server{Addr: addr, Handler: newServer(holder, m, opt, a).router(), ReadHeaderTimeout: 10 * time.Second}
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			a.log.Info().Str("addr", addr).Strs("types", holder.Get().Names()).Msg("listening")

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the schema document when it changes")
	return cmd
}

// server routes HTTP requests to the record types of a hot-reloadable schema.
type server struct {
	app     *app
	schemas *schemafile.Holder
	metrics *metrics.Collector
	opt     nonesafe.ParseOpt
}

func newServer(h *schemafile.Holder, m *metrics.Collector, opt nonesafe.ParseOpt, a *app) *server {
	m.SchemaTypes.Set(float64(len(h.Get().Names())))
	h.OnChange(func(set *schemafile.Set) {
		m.SchemaReloads.Inc()
		m.SchemaTypes.Set(float64(len(set.Names())))
	})
	h.OnError(func(error) { m.SchemaReloadErrors.Inc() })
	return &server{app: a, schemas: h, metrics: m, opt: opt}
}

func (s *server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/types", func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"types": s.schemas.Get().Names()})
	})
	r.Get("/types/{name}/schema", func(w http.ResponseWriter, req *http.Request) {
		t, ok := s.resolve(req)
		if !ok {
			middleware.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "unknown record type"})
			return
		}
		js, err := t.JSONSchema()
		if err != nil {
			middleware.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, js)
	})
	r.With(s.instrument, middleware.FillFunc(s.resolve, s.opt)).Post("/types/{name}/fill", s.fill)
	return r
}

// requestID tags every request with an X-Request-ID, keeping a client
// supplied one, and logs the request under it.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		s.app.log.Debug().Str("request_id", id).Str("method", req.Method).Str("path", req.URL.Path).Msg("request")
		next.ServeHTTP(w, req)
	})
}

func (s *server) resolve(req *http.Request) (*nonesafe.RecordType, bool) {
	return s.schemas.Get().Type(chi.URLParam(req, "name"))
}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, req)

		name := chi.URLParam(req, "name")
		if _, ok := s.resolve(req); !ok {
			name = "unknown"
		}
		mode := req.URL.Query().Get("mode")
		if mode == "" {
			mode = "canonical"
		} else if _, ok := nonesafe.ParseEncodeMode(mode); !ok {
			mode = "invalid"
		}
		s.metrics.FillsTotal.WithLabelValues(name, mode, metrics.Status(sr.status)).Inc()
		s.metrics.FillDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		s.metrics.FillBytes.WithLabelValues(name).Add(float64(sr.bytes))
	})
}

func (s *server) fill(w http.ResponseWriter, req *http.Request) {
	rec, _ := middleware.RecordFromContext(req.Context())
	mode, ok := nonesafe.ParseEncodeMode(req.URL.Query().Get("mode"))
	if !ok {
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "mode: want canonical, preserve or full"})
		return
	}
	m, err := nonesafe.Encode(rec, mode)
	if err != nil {
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
		return
	}
	s.app.log.Debug().Str("type", rec.Type().Name()).Str("mode", req.URL.Query().Get("mode")).Msg("filled")
	middleware.WriteJSON(w, http.StatusOK, m)
}
