package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vertexhq/vertex/internal/domain/account"
	"github.com/vertexhq/vertex/internal/domain/assignment"
	"github.com/vertexhq/vertex/internal/domain/block"
	"github.com/vertexhq/vertex/internal/domain/calendar"
	"github.com/vertexhq/vertex/internal/domain/progress"
)

// BlockStore defines the block operations the transport needs.
type BlockStore interface {
	Upsert(ctx context.Context, req block.UpsertRequest) (block.Block, error)
	Delete(ctx context.Context, id string) error
	ToggleCompletion(ctx context.Context, id string) error
	List(ctx context.Context) []block.Block
}

// AssignmentStore defines the assignment operations the transport needs.
type AssignmentStore interface {
	Upsert(ctx context.Context, req assignment.UpsertRequest) (assignment.Assignment, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (assignment.Assignment, error)
	List(ctx context.Context) []assignment.Assignment
	Denormalize(ctx context.Context, id string) (string, string)
}

// Server wires the planner HTTP API.
type Server struct {
	accounts    AccountService
	blocks      BlockStore
	assignments AssignmentStore
	logger      *slog.Logger
}

// NewRouter creates the HTTP router. Auth endpoints are open; everything
// else, including the MCP endpoint when a handler is given, sits behind the
// session-cookie middleware.
func NewRouter(accounts AccountService, blocks BlockStore, assignments AssignmentStore, mcpHandler http.Handler, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		accounts:    accounts,
		blocks:      blocks,
		assignments: assignments,
		logger:      logger,
	}

	r := chi.NewRouter()

	r.Get("/health", srv.handleHealth)
	r.Post("/api/signup", srv.handleSignup)
	r.Post("/api/login", srv.handleLogin)
	r.Post("/api/logout", srv.handleLogout)
	r.Get("/api/session", srv.handleSession)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(accounts))

		r.Get("/api/blocks", srv.handleListBlocks)
		r.Put("/api/blocks", srv.handleUpsertBlock)
		r.Delete("/api/blocks/{id}", srv.handleDeleteBlock)
		r.Post("/api/blocks/{id}/toggle", srv.handleToggleBlock)

		r.Get("/api/assignments", srv.handleListAssignments)
		r.Put("/api/assignments", srv.handleUpsertAssignment)
		r.Delete("/api/assignments/{id}", srv.handleDeleteAssignment)
		r.Get("/api/assignments/{id}/progress", srv.handleProgress)

		r.Get("/api/calendar", srv.handleCalendar)
		r.Get("/api/calendar/export.ics", srv.handleCalendarExport)

		// The MCP surface mutates the same stores as the REST API, so it
		// sits behind the same session gate. Stdio transport stays
		// credential-free; only the HTTP exposure is cookie-gated.
		if mcpHandler != nil {
			r.Handle("/mcp", mcpHandler)
			r.Handle("/mcp/", mcpHandler)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailResponse struct {
	Email string `json:"email"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	token, err := s.accounts.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, emailResponse{Email: normalizedEmail(req.Email)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	token, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, emailResponse{Email: normalizedEmail(req.Email)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.accounts.Logout(sessionToken(r))
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.accounts.Session(sessionToken(r)))
}

// writeAuthError maps account sentinel errors to the wire statuses: missing
// fields 400, duplicate account 409, absent account or bad credentials 403.
func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrMissingFields):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Email and password are required."})
	case errors.Is(err, account.ErrAccountExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "An account already exists."})
	case errors.Is(err, account.ErrNoAccount):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "No account exists yet."})
	case errors.Is(err, account.ErrInvalidCredentials):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Invalid credentials."})
	default:
		s.logger.Error("auth operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.blocks.List(r.Context()))
}

func (s *Server) handleUpsertBlock(w http.ResponseWriter, r *http.Request) {
	var req block.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// Resolve the denormalized reference pair; a dangling assignment id is
	// cleared rather than stored.
	req.AssignmentID, req.AssignmentTitle = s.assignments.Denormalize(r.Context(), req.AssignmentID)

	b, err := s.blocks.Upsert(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.blocks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleToggleBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.blocks.ToggleCompletion(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assignments.List(r.Context()))
}

func (s *Server) handleUpsertAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignment.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	a, err := s.assignments.Upsert(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := s.assignments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	a, err := s.assignments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, assignment.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "assignment not found"})
			return
		}
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress.Compute(a, s.blocks.List(r.Context())))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	view, err := calendar.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "view must be one of day, week, month, year"})
		return
	}

	writeJSON(w, http.StatusOK, calendar.Aggregate(s.blocks.List(r.Context()), view))
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	s.logger.Error("store operation failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// normalizedEmail mirrors the account service's canonical form so the
// response echoes what was stored.
func normalizedEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
