package live

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/vcell/internal/errors"
)

// Binding is a cell exposed over HTTP. *Hub satisfies it.
type Binding interface {
	http.Handler
	Name() string
	IsReadOnly() bool
	Snapshot(ctx context.Context) (json.RawMessage, error)
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

type routerConfig struct {
	metricsPath    string
	metricsHandler http.Handler
	logger         *slog.Logger
}

// WithMetrics serves h at path, typically promhttp.Handler().
func WithMetrics(path string, h http.Handler) RouterOption {
	return func(c *routerConfig) {
		c.metricsPath = path
		c.metricsHandler = h
	}
}

// WithRouterLogger sets the logger for request failures.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(c *routerConfig) { c.logger = logger }
}

// CellInfo describes one cell in the GET /cells listing.
type CellInfo struct {
	Name     string `json:"name"`
	ReadOnly bool   `json:"readOnly"`
}

// NewRouter mounts bindings:
//
//	GET /cells              list of cells
//	GET /cells/{name}       current value
//	GET /cells/{name}/ws    live stream
//	GET /healthz            liveness
func NewRouter(bindings []Binding, opts ...RouterOption) chi.Router {
	cfg := routerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	byName := make(map[string]Binding, len(bindings))
	infos := make([]CellInfo, 0, len(bindings))
	for _, b := range bindings {
		byName[b.Name()] = b
		infos = append(infos, CellInfo{Name: b.Name(), ReadOnly: b.IsReadOnly()})
	}
	slices.SortFunc(infos, func(a, b CellInfo) int {
		return strings.Compare(a.Name, b.Name)
	})

	lookup := func(w http.ResponseWriter, r *http.Request) (Binding, bool) {
		name := chi.URLParam(r, "name")
		b, ok := byName[name]
		if !ok {
			writeError(w, http.StatusNotFound,
				errors.New(errors.CodeUnknownCell).WithDetail(`No cell named "`+name+`"`))
		}
		return b, ok
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, cfg.metricsPath, cfg.metricsHandler)
	}

	r.Route("/cells", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, infos)
		})

		r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
			b, ok := lookup(w, r)
			if !ok {
				return
			}
			data, err := b.Snapshot(r.Context())
			if err != nil {
				ce := errors.Classify(err)
				status := http.StatusInternalServerError
				switch ce.Code {
				case errors.CodeUninitialized:
					status = http.StatusConflict
				case errors.CodeLoopStopped:
					status = http.StatusServiceUnavailable
				}
				if status == http.StatusInternalServerError {
					cfg.logger.Error("snapshot failed", "cell", b.Name(), "error", err)
				}
				writeError(w, status, ce)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(data)
		})

		r.Get("/{name}/ws", func(w http.ResponseWriter, r *http.Request) {
			b, ok := lookup(w, r)
			if !ok {
				return
			}
			b.ServeHTTP(w, r)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, ce *errors.CellError) {
	var frame struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	}
	frame.Code = ce.Code
	frame.Message = ce.Message
	frame.Detail = ce.Detail
	if frame.Detail == "" && ce.Wrapped != nil && !stderrors.Is(ce.Wrapped, context.Canceled) {
		frame.Detail = ce.Wrapped.Error()
	}
	writeJSON(w, status, frame)
}
