package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/infra/logging"
	"sales-copilot-bff/internal/usecase"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrNotActionable),
		errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInsufficientCredits):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrPollInFlight):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ===== session =====

type loginRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	token, err := s.auth.Mint(w, req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not mint session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// ===== inbox =====

func (s *Server) handleInboxList(w http.ResponseWriter, r *http.Request) {
	items, counts := s.inbox.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		Items  []*model.Proposal `json:"items"`
		Counts model.Counts      `json:"counts"`
	}{Items: items, Counts: counts})
}

func (s *Server) handleInboxRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.inbox.FetchAll(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	s.handleInboxList(w, r)
}

func (s *Server) inboxAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx := logging.WithProposalID(r.Context(), id)

		var err error
		switch action {
		case "accept":
			err = s.inbox.Accept(ctx, id)
		case "decline":
			err = s.inbox.Decline(ctx, id)
		case "retry":
			err = s.inbox.Retry(ctx, id)
		case "complete":
			err = s.inbox.Complete(ctx, id)
		default:
			writeError(w, http.StatusNotFound, "unknown action")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.handleInboxList(w, r)
	}
}

type snoozeRequest struct {
	Option string     `json:"option,omitempty"`
	Until  *time.Time `json:"until,omitempty"`
}

func (s *Server) handleSnooze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req snoozeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var until time.Time
	switch {
	case req.Until != nil:
		until = *req.Until
	case req.Option != "":
		t, err := model.ResolveSnooze(model.SnoozeOption(req.Option), time.Now())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		until = t
	default:
		writeError(w, http.StatusBadRequest, "option or until is required")
		return
	}

	if err := s.inbox.Snooze(logging.WithProposalID(r.Context(), id), id, until); err != nil {
		writeDomainError(w, err)
		return
	}
	s.handleInboxList(w, r)
}

// ===== research / prospecting =====

func (s *Server) handleResearchStart(w http.ResponseWriter, r *http.Request) {
	var req adapter.ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	jobID, err := s.research.Start(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// Follow the job in the background so the status is warm when the
	// dashboard polls GET /research/{id}.
	s.watchInBackground(jobID, s.research.Watch)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) handleResearchGet(w http.ResponseWriter, r *http.Request) {
	job, err := s.research.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.research.Insights(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Items []model.Insight `json:"items"`
	}{Items: insights})
}

func (s *Server) handleProspectingStart(w http.ResponseWriter, r *http.Request) {
	var req adapter.ProspectingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	jobID, err := s.prospect.Start(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.watchInBackground(jobID, s.prospect.Watch)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) handleProspectingGet(w http.ResponseWriter, r *http.Request) {
	job, err := s.prospect.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// watchInBackground hands the long poll to the worker pool. The watch uses
// its own context: the HTTP request ends long before the job does. Drops and
// duplicate-poll rejections are fine, the next Get still sees the truth.
func (s *Server) watchInBackground(jobID string, watch func(ctx context.Context, jobID string) error) {
	if s.pool == nil {
		return
	}
	err := s.pool.Submit(func(ctx context.Context) error {
		if err := watch(ctx, jobID); err != nil && !errors.Is(err, domain.ErrPollInFlight) {
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("job_id", jobID).Msg("watch not scheduled")
	}
}

// ===== drafts / credits / tip / entities =====

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req usecase.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.drafts.Draft(r.Context(), logging.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := logging.UserIDFromContext(ctx)

	balance, err := s.drafts.Balance(ctx, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recent, err := s.drafts.Recent(ctx, userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Balance int64                `json:"balance_micro"`
		Recent  []*model.CreditEntry `json:"recent"`
	}{Balance: balance, Recent: recent})
}

func (s *Server) handleTip(w http.ResponseWriter, r *http.Request) {
	tip, err := s.tips.Today(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tip": tip})
}

func (s *Server) handleEntityPatch(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	raw, err := s.entities.Patch(r.Context(), chi.URLParam(r, "kind"), chi.URLParam(r, "id"), fields)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
