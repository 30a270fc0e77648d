// Package handler exposes the balloting, registry and results endpoints.
// The registry surface and the comment/fraud results are admin-only; callers
// mount them behind the admin middleware. Winner and candidates are public.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ballotbox/internal/election/models"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/httputil"
	adminmw "ballotbox/pkg/platform/middleware/admin"
	"ballotbox/pkg/requestcontext"
)

// Engine is the ballot lifecycle surface the handler depends on.
type Engine interface {
	IssueBallot(ctx context.Context, nationalID string) (string, error)
	VerifyBallot(ctx context.Context, nationalID, ballotNumber string) (bool, error)
	CountBallot(ctx context.Context, nationalID, ballotNumber string, candidateID int64, comment string) (models.BallotStatus, error)
	InvalidateBallot(ctx context.Context, ballotNumber, actorID string) (bool, error)
	BallotComments(ctx context.Context) ([]string, error)
	ComputeWinner(ctx context.Context) (*models.Candidate, error)
	FraudulentVoters(ctx context.Context) ([]string, error)
}

// Registrar is the registry surface the handler depends on.
type Registrar interface {
	RegisterVoter(ctx context.Context, nationalID, firstName, lastName string) error
	VoterStatus(ctx context.Context, nationalID string) (models.VoterStatus, error)
	DeregisterVoter(ctx context.Context, nationalID, actorID string) error
	RegisterCandidate(ctx context.Context, name string) (*models.Candidate, error)
	AllCandidates(ctx context.Context) ([]*models.Candidate, error)
}

// Handler wires election endpoints to the engine and registrar.
type Handler struct {
	engine    Engine
	registrar Registrar
	logger    *slog.Logger
}

// New constructs an election handler with its dependencies.
func New(engine Engine, registrar Registrar, logger *slog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		registrar: registrar,
		logger:    logger,
	}
}

// RegisterPublic mounts the voter-facing balloting endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/ballots/issue", h.HandleIssueBallot)
	r.Post("/ballots/count", h.HandleCountBallot)
	r.Get("/ballots/verify", h.HandleVerifyBallot)
	r.Get("/candidates", h.HandleAllCandidates)
	r.Get("/results/winner", h.HandleWinner)
}

// RegisterAdmin mounts the registry and results endpoints. The caller is
// responsible for wrapping the router with admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/ballots/invalidate", h.HandleInvalidateBallot)
	r.Post("/registry/voters", h.HandleRegisterVoter)
	r.Get("/registry/voters/status", h.HandleVoterStatus)
	r.Delete("/registry/voters", h.HandleDeregisterVoter)
	r.Post("/registry/candidates", h.HandleRegisterCandidate)
	r.Get("/results/comments", h.HandleComments)
	r.Get("/results/fraud", h.HandleFraud)
}

// HandleIssueBallot handles POST /api/ballots/issue.
func (h *Handler) HandleIssueBallot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[IssueBallotRequest](w, r, h.logger)
	if !ok {
		return
	}

	ballotNumber, err := h.engine.IssueBallot(ctx, req.NationalID)
	if err != nil {
		h.logError(ctx, "ballot issuance failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, IssueBallotResponse{BallotNumber: ballotNumber})
}

// HandleCountBallot handles POST /api/ballots/count. A counted ballot is
// acknowledged with 202; every rejection outcome maps to 409 with the
// outcome in the body.
func (h *Handler) HandleCountBallot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.Decode[CountBallotRequest](w, r, h.logger)
	if !ok {
		return
	}

	status, err := h.engine.CountBallot(ctx, req.NationalID, req.BallotNumber, req.CandidateID, req.VoterComments)
	if err != nil {
		h.logError(ctx, "ballot count failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "ballot count adjudicated",
		"request_id", requestcontext.RequestID(ctx),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httpStatus := http.StatusConflict
	if status == models.BallotStatusBallotCounted {
		httpStatus = http.StatusAccepted
	}
	httputil.WriteJSON(w, httpStatus, CountBallotResponse{Status: status})
}

// HandleVerifyBallot handles GET /api/ballots/verify.
func (h *Handler) HandleVerifyBallot(w http.ResponseWriter, r *http.Request) {
	nationalID := r.URL.Query().Get("national_id")
	ballotNumber := r.URL.Query().Get("ballot_number")
	if nationalID == "" || ballotNumber == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "national_id and ballot_number are required"))
		return
	}

	valid, err := h.engine.VerifyBallot(r.Context(), nationalID, ballotNumber)
	if err != nil {
		h.logError(r.Context(), "ballot verification failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifyBallotResponse{Valid: valid})
}

// HandleInvalidateBallot handles POST /api/ballots/invalidate. Invalidating
// an already invalid ballot succeeds; a counted ballot is a conflict.
func (h *Handler) HandleInvalidateBallot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[InvalidateBallotRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.BallotNumber == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "ballot_number is required"))
		return
	}

	invalidated, err := h.engine.InvalidateBallot(ctx, req.BallotNumber, adminmw.ActorID(ctx))
	if err != nil {
		h.logError(ctx, "ballot invalidation failed", err)
		httputil.WriteError(w, err)
		return
	}
	if !invalidated {
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "ballot has already been counted"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, InvalidateBallotResponse{Invalidated: true})
}

// HandleAllCandidates handles GET /api/candidates.
func (h *Handler) HandleAllCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.registrar.AllCandidates(r.Context())
	if err != nil {
		h.logError(r.Context(), "candidate listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	if candidates == nil {
		candidates = []*models.Candidate{}
	}
	httputil.WriteJSON(w, http.StatusOK, CandidatesResponse{Candidates: candidates})
}

// HandleRegisterVoter handles POST /api/admin/registry/voters.
func (h *Handler) HandleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[RegisterVoterRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.registrar.RegisterVoter(ctx, req.NationalID, req.FirstName, req.LastName); err != nil {
		h.logError(ctx, "voter registration failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// HandleVoterStatus handles GET /api/admin/registry/voters/status.
func (h *Handler) HandleVoterStatus(w http.ResponseWriter, r *http.Request) {
	nationalID := r.URL.Query().Get("national_id")
	if nationalID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "national_id is required"))
		return
	}

	status, err := h.registrar.VoterStatus(r.Context(), nationalID)
	if err != nil {
		h.logError(r.Context(), "voter status lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VoterStatusResponse{Status: status})
}

// HandleDeregisterVoter handles DELETE /api/admin/registry/voters.
func (h *Handler) HandleDeregisterVoter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[DeregisterVoterRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.registrar.DeregisterVoter(ctx, req.NationalID, adminmw.ActorID(ctx)); err != nil {
		h.logError(ctx, "voter deregistration failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegisterCandidate handles POST /api/admin/registry/candidates.
func (h *Handler) HandleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[RegisterCandidateRequest](w, r, h.logger)
	if !ok {
		return
	}

	candidate, err := h.registrar.RegisterCandidate(ctx, req.Name)
	if err != nil {
		h.logError(ctx, "candidate registration failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, candidate)
}

// HandleWinner handles GET /api/results/winner.
func (h *Handler) HandleWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.engine.ComputeWinner(r.Context())
	if err != nil {
		h.logError(r.Context(), "winner computation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WinnerResponse{Winner: winner})
}

// HandleComments handles GET /api/admin/results/comments.
func (h *Handler) HandleComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.engine.BallotComments(r.Context())
	if err != nil {
		h.logError(r.Context(), "comment listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	if comments == nil {
		comments = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, CommentsResponse{Comments: comments})
}

// HandleFraud handles GET /api/admin/results/fraud.
func (h *Handler) HandleFraud(w http.ResponseWriter, r *http.Request) {
	voters, err := h.engine.FraudulentVoters(r.Context())
	if err != nil {
		h.logError(r.Context(), "fraud listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	if voters == nil {
		voters = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, FraudResponse{FraudulentVoters: voters})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
