package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appthreats "github.com/bryanwahyu/threatlens/internal/application/threats"
	domai "github.com/bryanwahyu/threatlens/internal/domain/ai"
	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/ai/prompt"
	"github.com/bryanwahyu/threatlens/internal/logging"
	"github.com/bryanwahyu/threatlens/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Options configures the middleware stack around the routes
type Options struct {
	Metrics        *middleware.Metrics
	Checks         map[string]middleware.HealthChecker
	APIKeys        map[string]string
	AllowedOrigins []string
	RateCapacity   int // 0 disables rate limiting
	RateRefill     int
	Log            *zap.SugaredLogger
}

type Router struct {
	svc     *appthreats.Service
	metrics *middleware.Metrics
	log     *zap.SugaredLogger
}

// NewRouter returns the HTTP handler and a stop func for its background workers
func NewRouter(svc *appthreats.Service, opts Options) (http.Handler, func()) {
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	if opts.Log == nil {
		opts.Log = logging.Logger
	}
	r := &Router{svc: svc, metrics: opts.Metrics, log: opts.Log}
	stop := func() {}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))
	mux.Use(opts.Metrics.Middleware)
	mux.Use(middleware.Logging(opts.Log))
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.RateCapacity > 0 {
		limit, stopLimiter := middleware.RateLimitMiddleware(opts.RateCapacity, opts.RateRefill)
		mux.Use(limit)
		stop = stopLimiter
	}

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Checks))
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", opts.Metrics.Handler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analyses", r.wrap(r.handleHistory))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/export", r.wrap(r.handleExport))
		rt.Post("/export/archive", r.wrap(r.handleArchive))
		rt.Get("/templates", r.wrap(r.handleTemplates))
		rt.Get("/samples", r.wrap(r.handleSamples))
	})

	return mux, stop
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks input validation failures
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			r.log.Errorw("request failed", "path", req.URL.Path, "status", status, "error", err)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}
}

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, prompt.ErrUnknownTemplate),
		errors.Is(err, appthreats.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, appthreats.ErrModelCall):
		return http.StatusBadGateway
	case errors.Is(err, appthreats.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type analyzeRequest struct {
	Query        string            `json:"query"`
	Template     string            `json:"template"`
	Params       map[string]string `json:"params"`
	TTP          string            `json:"ttp"`
	ThreatActor  string            `json:"threat_actor"`
	TargetSector string            `json:"target_sector"`
}

// POST /v1/analyze
// Body: {"query": "..."} or {"template": "threat_actor", "params": {"actor": "..."}}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes)).Decode(&body); err != nil {
		return invalid("invalid request body: %v", err)
	}

	cmd, err := toCommand(body)
	if err != nil {
		return err
	}

	r.metrics.AnalysesTotal.Add(1)
	rec, err := r.svc.Analyze(req.Context(), cmd)
	if err != nil {
		r.metrics.AnalysesFailed.Add(1)
		return err
	}
	return writeJSON(w, http.StatusCreated, rec)
}

func toCommand(body analyzeRequest) (appthreats.AnalyzeCommand, error) {
	var cmd appthreats.AnalyzeCommand
	if body.Template != "" {
		params, err := middleware.ValidateTemplateParams(body.Params)
		if err != nil {
			return cmd, invalid("%v", err)
		}
		cmd.Template, cmd.Params = body.Template, params
	} else {
		q, err := middleware.ValidateQuery(body.Query)
		if err != nil {
			return cmd, invalid("%v", err)
		}
		cmd.Query = q
	}

	tags := []struct {
		name string
		in   string
		out  *string
	}{
		{"ttp", body.TTP, &cmd.TTP},
		{"threat_actor", body.ThreatActor, &cmd.ThreatActor},
		{"target_sector", body.TargetSector, &cmd.TargetSector},
	}
	for _, t := range tags {
		v, err := middleware.ValidateTag(t.name, t.in)
		if err != nil {
			return cmd, invalid("%v", err)
		}
		*t.out = v
	}
	return cmd, nil
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.History(req.Context(), middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return invalid("%v", err)
	}
	rec, err := r.svc.Get(req.Context(), domain.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/summary
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	summary, err := r.svc.Summary(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, summary)
}

// GET /v1/export?format=csv|json
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	format, err := appthreats.ParseFormat(req.URL.Query().Get("format"))
	if err != nil {
		return err
	}
	data, err := r.svc.Export(req.Context(), format)
	if err != nil {
		return err
	}
	r.metrics.ExportsTotal.Add(1)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="threat_analyses.%s"`, format))
	_, err = w.Write(data)
	return err
}

// POST /v1/export/archive?format=csv|json
func (r *Router) handleArchive(w http.ResponseWriter, req *http.Request) error {
	format, err := appthreats.ParseFormat(req.URL.Query().Get("format"))
	if err != nil {
		return err
	}
	url, err := r.svc.ArchiveExport(req.Context(), format)
	if err != nil {
		return err
	}
	r.metrics.ExportsTotal.Add(1)
	return writeJSON(w, http.StatusCreated, map[string]string{"url": url, "format": string(format)})
}

// GET /v1/templates
func (r *Router) handleTemplates(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{
		"templates":      prompt.Templates(),
		"sample_queries": prompt.SampleQueries,
	})
}

// GET /v1/samples
func (r *Router) handleSamples(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, prompt.SampleThreats())
}
