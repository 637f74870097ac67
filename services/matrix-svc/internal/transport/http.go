// Package transport exposes MatrixService over a minimal net/http JSON
// surface: health/readiness probes, Prometheus metrics, and a single
// POST /v1/matrix endpoint that marshals directly to/from the engine's own
// request/response structs. There is no RPC framework and no generated
// code — just net/http and encoding/json, the way the reference exposes a
// standalone metrics/health mux alongside its generated RPC surface.
package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"matrixcore/pkg/apperror"
	"matrixcore/pkg/logger"
	"matrixcore/pkg/metrics"
	"matrixcore/pkg/telemetry"
	"matrixcore/services/matrix-svc/internal/engine"
	"matrixcore/services/matrix-svc/internal/graphmodel"
	"matrixcore/services/matrix-svc/internal/service"
)

// Server is the thin HTTP surface in front of a MatrixService.
type Server struct {
	svc     *service.MatrixService
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// NewServer builds the HTTP surface, registering all routes.
func NewServer(svc *service.MatrixService) *Server {
	s := &Server{
		svc:     svc,
		metrics: metrics.Get(),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the wrapped top-level handler, including tracing middleware.
func (s *Server) Handler() http.Handler {
	return telemetry.HTTPServerMiddleware(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/readyz", s.handleReadyz)
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.HandleFunc("/v1/matrix", s.handleMatrix)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !s.svc.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok")) //nolint:errcheck // health probe, write error not actionable
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !s.svc.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready")) //nolint:errcheck // readiness probe, write error not actionable
}

// matrixRequestBody is the wire shape of POST /v1/matrix, mirroring
// engine.Request but with JSON-friendly field names and candidate edges
// expressed as plain uint64s.
type matrixRequestBody struct {
	Sources           []locationBody `json:"sources"`
	Targets           []locationBody `json:"targets"`
	Mode              string         `json:"mode"`
	MaxMatrixDistance float64        `json:"max_matrix_distance"`
	HasTime           bool           `json:"has_time"`
	Invariant         bool           `json:"invariant"`
}

type locationBody struct {
	Candidates []candidateBody `json:"candidates"`
	DateTime   int64           `json:"date_time,omitempty"`
}

type candidateBody struct {
	EdgeID       uint64  `json:"edge_id"`
	PercentAlong float64 `json:"percent_along"`
}

type matrixResponseBody struct {
	Matrix    [][]engine.Cell `json:"matrix"`
	Cancelled bool            `json:"cancelled"`
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperror.New(apperror.CodeUnimplemented, "only POST is supported"))
		return
	}

	var body matrixRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.NewWithField(apperror.CodeInvalidArgument, "malformed JSON body", "body"))
		return
	}

	req := toEngineRequest(body)

	start := time.Now()
	resp, err := s.svc.SourceToTarget(r.Context(), requestKey(r), req)
	if err != nil {
		s.metrics.RecordHTTPRequest("/v1/matrix", statusLabel(err), time.Since(start))
		writeError(w, err)
		return
	}

	s.metrics.RecordHTTPRequest("/v1/matrix", "200", time.Since(start))
	writeJSON(w, http.StatusOK, matrixResponseBody{Matrix: resp.Matrix, Cancelled: resp.Cancelled})
}

func toEngineRequest(body matrixRequestBody) *engine.Request {
	req := &engine.Request{
		Sources:           make([]engine.Location, len(body.Sources)),
		Targets:           make([]engine.Location, len(body.Targets)),
		Mode:              engine.ParseTravelMode(body.Mode),
		MaxMatrixDistance: body.MaxMatrixDistance,
		HasTime:           body.HasTime,
		Invariant:         body.Invariant,
	}
	for i, l := range body.Sources {
		req.Sources[i] = toEngineLocation(l)
	}
	for i, l := range body.Targets {
		req.Targets[i] = toEngineLocation(l)
	}
	return req
}

func toEngineLocation(l locationBody) engine.Location {
	loc := engine.Location{
		Candidates: make([]graphmodel.CandidateEdge, len(l.Candidates)),
		DateTime:   l.DateTime,
	}
	for i, c := range l.Candidates {
		loc.Candidates[i] = graphmodel.CandidateEdge{
			EdgeID:       graphmodel.GraphId(c.EdgeID),
			PercentAlong: c.PercentAlong,
		}
	}
	return loc
}

// requestKey derives the rate-limit identity from the request: the
// original caller's address if forwarded through a proxy, else the direct
// remote address.
func requestKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

func statusLabel(err error) string {
	_, status, _ := apperror.ToHTTP(err)
	return http.StatusText(status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to encode HTTP response", "error", err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code, status, message := apperror.ToHTTP(err)
	writeJSON(w, status, errorBody{Code: string(code), Message: message})
}
