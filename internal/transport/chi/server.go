package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/domain"
	healthuc "github.com/cutelabs/ragd/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// ChatService answers questions through a named provider.
type ChatService interface {
	Answer(ctx context.Context, question, providerName string) (string, error)
}

// DocumentService handles document CRUD with vectorization.
type DocumentService interface {
	Upsert(ctx context.Context, doc domain.Document) error
	Get(ctx context.Context, id string) (domain.Document, error)
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}

// SegmentService splits paragraphs into structured segments.
type SegmentService interface {
	Divide(ctx context.Context, text string) ([]domain.Segment, error)
}

// SettingsService reads and updates the retrieval fanout.
type SettingsService interface {
	Update(ctx context.Context, n int) (int, error)
}

// ContextService exposes the retrieval context for inspection.
type ContextService interface {
	BuildContext(ctx context.Context, question string) (string, error)
}

// Server holds the HTTP handlers for the ragd API.
type Server struct {
	chat          ChatService
	documents     DocumentService
	segment       SegmentService
	settings      SettingsService
	retrieval     ContextService
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat ChatService,
	documents DocumentService,
	segment SegmentService,
	settings SettingsService,
	retrieval ContextService,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:      chat,
		documents: documents,
		segment:   segment,
		settings:  settings,
		retrieval: retrieval,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrUnsupportedProvider, http.StatusBadRequest, "unsupported_provider"),
		sentinelHandler(domain.ErrFanoutOutOfRange, http.StatusBadRequest, "fanout_out_of_range"),
		sentinelHandler(domain.ErrEmptyQuestion, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusInternalServerError, "extraction_failed"),
		sentinelHandler(domain.ErrUpstreamFailure, http.StatusBadGateway, "upstream_failure"),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/chat", s.handleChat)
	r.Post("/chat/paragraph-divide", s.handleParagraphDivide)
	r.Post("/doc/upsert", s.handleUpsertDocument)
	r.Get("/doc/{id}", s.handleGetDocument)
	r.Delete("/doc/{id}", s.handleDeleteDocument)
	r.Get("/docs/ids", s.handleListDocumentIDs)
	r.Post("/update-n", s.handleUpdateFanout)
	r.Post("/test/get-context", s.handleGetContext)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type chatRequest struct {
	Question string `json:"question"`
	Provider string `json:"provider"`
}

type chatResponse struct {
	Status string `json:"status"`
	Answer string `json:"answer"`
}

// handleChat handles POST /chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	answer, err := s.chat.Answer(r.Context(), req.Question, req.Provider)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Status: "success", Answer: answer})
}

type upsertRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type actionResponse struct {
	Status string `json:"status"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// handleUpsertDocument handles POST /doc/upsert.
func (s *Server) handleUpsertDocument(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	doc := domain.Document{ID: req.ID, Content: req.Content}
	if err := s.documents.Upsert(r.Context(), doc); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{Status: "success", Action: "upsert", ID: req.ID})
}

// handleGetDocument handles GET /doc/{id}.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":      doc.ID,
		"content": doc.Content,
	})
}

// handleDeleteDocument handles DELETE /doc/{id}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{Status: "success", Action: "delete", ID: id})
}

// handleListDocumentIDs handles GET /docs/ids.
func (s *Server) handleListDocumentIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.documents.ListIDs(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// [] rather than null for an empty corpus
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

type paragraphDivideRequest struct {
	Text string `json:"text"`
}

type paragraphDivideResponse struct {
	Result []domain.Segment `json:"result"`
}

// handleParagraphDivide handles POST /chat/paragraph-divide.
func (s *Server) handleParagraphDivide(w http.ResponseWriter, r *http.Request) {
	var req paragraphDivideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	segments, err := s.segment.Divide(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paragraphDivideResponse{Result: segments})
}

type updateFanoutRequest struct {
	N int `json:"n"`
}

type updateFanoutResponse struct {
	N int `json:"n"`
}

// handleUpdateFanout handles POST /update-n. n=0 reads the current value.
func (s *Server) handleUpdateFanout(w http.ResponseWriter, r *http.Request) {
	var req updateFanoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	current, err := s.settings.Update(r.Context(), req.N)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateFanoutResponse{N: current})
}

type getContextRequest struct {
	Question string `json:"question"`
}

// handleGetContext handles POST /test/get-context: exposes the retrieval
// context that /chat would compose, without calling a completion provider.
func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	var req getContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	contextText, err := s.retrieval.BuildContext(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"context": contextText})
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel
// error. 4xx responses carry the wrapped error's own message so distinct
// failures of the same class stay distinguishable to the client; these
// messages are all constructed in-process. 5xx responses keep the bare
// sentinel text so upstream provider detail never reaches the client.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if status < http.StatusInternalServerError {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
