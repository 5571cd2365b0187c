package latecheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mbeaudry/latecheck-service/internal/forecast"
	"github.com/mbeaudry/latecheck-service/internal/gtfs"
	"github.com/mbeaudry/latecheck-service/internal/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RoutesResponse struct {
	RouteCount int          `json:"route_count"`
	StopCount  int          `json:"stop_count"`
	Routes     []gtfs.Route `json:"routes"`
}

type PredictResponse struct {
	Route          gtfs.Route         `json:"route"`
	Estimate       forecast.Estimate  `json:"estimate"`
	Severity       string             `json:"severity"`
	Breakdown      forecast.Breakdown `json:"breakdown"`
	Advice         string             `json:"advice"`
	LeaveEarlier   int                `json:"leave_earlier_minutes"`
	Recommendation string             `json:"recommendation,omitempty"`
}

type CodeError struct {
	code int
	msg  string
}

func (c CodeError) Error() string {
	return c.msg
}

var (
	predictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "latecheck_predictions_total",
		Help: "Total number of delay predictions served.",
	})
	predictionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "latecheck_predictions_rejected_total",
		Help: "Total number of prediction requests rejected as invalid.",
	})
	delayMinutes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "latecheck_delay_minutes",
		Help:    "Distribution of predicted delays in minutes.",
		Buckets: []float64{2, 5, 10, 15, 20, 30, 45},
	})
)

type Service struct {
	ds    *gtfs.Dataset
	est   *forecast.Estimator
	store *session.Store
	addr  string

	Logger *zap.SugaredLogger
}

// New builds the service from the environment. The dataset load is the only
// fallible step; without it there is no interactive mode, so the error is
// returned for the caller to report and exit on.
func New() (*Service, error) {
	s := &Service{}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	s.Logger = baseLogger.Sugar()

	routesPath := envOr("routes_csv_path", "data/routes.csv")
	stopsPath := envOr("stops_csv_path", "data/stops.csv")
	s.addr = envOr("listen_address", ":8080")

	ds, err := gtfs.Load(context.Background(), routesPath, stopsPath)
	if err != nil {
		return nil, err
	}
	if n := ds.SkippedRows(); n > 0 {
		s.Logger.Warnw("rejected malformed route rows at load",
			"count", n, "file", routesPath)
	}
	s.Logger.Infow("dataset loaded",
		"routes", ds.RouteCount(), "stops", ds.StopCount())
	s.ds = ds

	var rc *redis.Client
	disableRedis, err := strconv.ParseBool(os.Getenv("disable_redis"))
	if err != nil || !disableRedis {
		rc = redis.NewClient(&redis.Options{
			Addr: os.Getenv("redis_address"),
		})
	}
	s.store = session.New(rc, 30*time.Minute)

	s.est = forecast.New()

	return s, nil
}

func (s *Service) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/routes", s.RoutesHandler)
	mux.HandleFunc("/predict", s.PredictHandler)
	mux.HandleFunc("/last", s.LastHandler)
	mux.HandleFunc("/conditions", s.ConditionsHandler)
	mux.HandleFunc("/health", s.HealthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	_ = http.ListenAndServe(s.addr, mux)
}

func (s *Service) RoutesHandler(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, &RoutesResponse{
		RouteCount: s.ds.RouteCount(),
		StopCount:  s.ds.StopCount(),
		Routes:     s.ds.Options(),
	})
}

func (s *Service) PredictHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Predict(r.Context(), r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, resp)
}

func (s *Service) Predict(ctx context.Context, r *http.Request) (*PredictResponse, error) {
	routeID := r.URL.Query().Get("route")
	if routeID == "" {
		predictionsRejected.Inc()
		return nil, CodeError{code: 400, msg: "Missing 'route' query parameter in request"}
	}
	route, ok := s.ds.Find(routeID)
	if !ok {
		predictionsRejected.Inc()
		return nil, CodeError{code: 400, msg: fmt.Sprintf("Unknown route '%v'.", routeID)}
	}

	est := s.est.Predict(route.Length)
	predictionsTotal.Inc()
	delayMinutes.Observe(float64(est.DelayMinutes))

	resp := &PredictResponse{
		Route:          route,
		Estimate:       est,
		Severity:       forecast.Severity(est.DelayMinutes),
		Breakdown:      forecast.BreakdownOf(est),
		Advice:         forecast.Advice(est.DelayMinutes),
		LeaveEarlier:   forecast.DepartureOffset(est.DelayMinutes),
		Recommendation: forecast.Recommendation(est.DelayMinutes),
	}

	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		err := s.store.Put(ctx, sessionID, session.Record{Route: route, Estimate: est})
		if err != nil {
			s.Logger.Warnw("error storing session prediction",
				"session", sessionID, "error", err.Error())
		}
	}

	return resp, nil
}

func (s *Service) LastHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		s.writeError(w, CodeError{code: 400, msg: "Missing 'session' query parameter in request"})
		return
	}
	rec, err := s.store.Get(r.Context(), sessionID)
	if errors.Is(err, session.ErrNoPrediction) {
		s.writeError(w, CodeError{code: 404, msg: "No prediction stored for this session"})
		return
	}
	if err != nil {
		s.Logger.Errorw("error fetching session prediction",
			"session", sessionID, "error", err.Error())
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, &PredictResponse{
		Route:          rec.Route,
		Estimate:       rec.Estimate,
		Severity:       forecast.Severity(rec.Estimate.DelayMinutes),
		Breakdown:      forecast.BreakdownOf(rec.Estimate),
		Advice:         forecast.Advice(rec.Estimate.DelayMinutes),
		LeaveEarlier:   forecast.DepartureOffset(rec.Estimate.DelayMinutes),
		Recommendation: forecast.Recommendation(rec.Estimate.DelayMinutes),
	})
}

func (s *Service) ConditionsHandler(w http.ResponseWriter, r *http.Request) {
	conditions := s.est.CurrentConditions()
	s.writeResponse(w, &conditions)
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(200)
	io.WriteString(w, "ok")
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	codeErr, ok := err.(CodeError)
	if ok {
		bodyBytes, _ := json.Marshal(ErrorResponse{Error: codeErr.Error()})
		w.WriteHeader(codeErr.code)
		io.WriteString(w, string(bodyBytes[:]))
	} else {
		w.WriteHeader(500)
		io.WriteString(w, "Internal server error")
	}
}

func (s *Service) writeResponse(w http.ResponseWriter, resp interface{}) {
	bodyBytes, _ := json.Marshal(resp)
	w.WriteHeader(200)
	io.WriteString(w, string(bodyBytes[:]))
}

func envOr(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
