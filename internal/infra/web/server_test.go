package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/config"
	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/usecase"
)

type testEnv struct {
	srv      *Server
	router   http.Handler
	token    string
	inbox    *fakeInboxUC
	research *fakeJobsUC
	prospect *fakeSearchUC
	drafts   *fakeDraftUC
	tips     *fakeTipUC
	entities *fakeEntityUC
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	env := &testEnv{
		inbox:    &fakeInboxUC{},
		research: &fakeJobsUC{startID: "research-1"},
		prospect: &fakeSearchUC{startID: "search-1"},
		drafts:   &fakeDraftUC{result: &usecase.DraftResult{Text: "hi", Model: "gpt-4o-mini", SpentMicro: 42}},
		tips:     &fakeTipUC{tip: "call before 10am"},
		entities: &fakeEntityUC{raw: json.RawMessage(`{"ok":true}`)},
	}
	auth := NewAuthManager("test-secret", false, "", time.Hour)
	env.srv = NewServer(
		env.inbox, env.research, env.prospect, env.drafts, env.tips, env.entities,
		auth, nil, nil,
		config.ServerConfig{RateLimit: 0},
		&logger,
	)
	env.router = env.srv.Routes()

	rec := httptest.NewRecorder()
	token, err := auth.Mint(rec, "rep-7")
	if err != nil {
		t.Fatalf("mint session: %v", err)
	}
	env.token = token
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestAuth_MissingOrBadToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/inbox", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inbox", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for bad token, got %d", rr.Code)
	}
}

func TestSession_LoginAndLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/session", map[string]string{"user_id": "rep-1"}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Token == "" {
		t.Fatalf("expected token in response, err=%v", err)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/session", map[string]string{}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for missing user_id, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/session", nil, false)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", rec.Code)
	}
}

func TestInbox_ListAndActions(t *testing.T) {
	t.Run("list returns items and counts", func(t *testing.T) {
		env := newTestEnv(t)
		env.inbox.items = []*model.Proposal{seedProposal("p1", "proposed")}
		env.inbox.counts = model.Counts{Proposed: 1}

		rec := env.do(t, http.MethodGet, "/api/v1/inbox", nil, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		var body struct {
			Items  []*model.Proposal `json:"items"`
			Counts model.Counts      `json:"counts"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Items) != 1 || body.Counts.Proposed != 1 {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("accept routes to the use case", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/p1/accept", nil, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		if env.inbox.lastCall != "accept" || env.inbox.lastID != "p1" {
			t.Fatalf("unexpected call %s/%s", env.inbox.lastCall, env.inbox.lastID)
		}
	})

	t.Run("missing proposal maps to 404", func(t *testing.T) {
		env := newTestEnv(t)
		env.inbox.actionErr = notFound("nope")
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/nope/accept", nil, true)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rec.Code)
		}
	})

	t.Run("non-actionable maps to 400", func(t *testing.T) {
		env := newTestEnv(t)
		env.inbox.actionErr = fmt.Errorf("proposal p2: %w", domain.ErrNotActionable)
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/p2/decline", nil, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("refresh forces a fetch", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/refresh", nil, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		if env.inbox.lastCall != "fetch" {
			t.Fatalf("expected fetch, got %s", env.inbox.lastCall)
		}
	})
}

func TestSnooze_OptionAndExplicitUntil(t *testing.T) {
	t.Run("named option resolves to a future time", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/p1/snooze", map[string]string{"option": "tomorrow_morning"}, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		if env.inbox.lastCall != "snooze" || !env.inbox.lastUntil.After(time.Now()) {
			t.Fatalf("expected future snooze, got %s at %v", env.inbox.lastCall, env.inbox.lastUntil)
		}
	})

	t.Run("explicit until passes through", func(t *testing.T) {
		env := newTestEnv(t)
		until := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/p1/snooze", map[string]any{"until": until}, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		if !env.inbox.lastUntil.Equal(until) {
			t.Fatalf("want %v, got %v", until, env.inbox.lastUntil)
		}
	})

	t.Run("unknown option maps to 400", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/p1/snooze", map[string]string{"option": "next_century"}, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("empty body maps to 400", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/inbox/p1/snooze", map[string]string{}, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})
}

func TestResearchAndProspecting(t *testing.T) {
	t.Run("start returns 202 with job id", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/research", map[string]string{"prospect_id": "pr-1"}, true)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("want 202, got %d body=%s", rec.Code, rec.Body.String())
		}
		var body map[string]string
		_ = json.NewDecoder(rec.Body).Decode(&body)
		if body["job_id"] != "research-1" {
			t.Fatalf("unexpected job id %q", body["job_id"])
		}
	})

	t.Run("get returns the job entity", func(t *testing.T) {
		env := newTestEnv(t)
		env.research.job = &model.JobEntity{ID: "research-1", Status: "completed"}
		rec := env.do(t, http.MethodGet, "/api/v1/research/research-1", nil, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
	})

	t.Run("insights on unfinished brief maps to 400", func(t *testing.T) {
		env := newTestEnv(t)
		env.research.insErr = fmt.Errorf("%w: brief r1 is executing", domain.ErrInvalidArgument)
		rec := env.do(t, http.MethodGet, "/api/v1/research/r1/insights", nil, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})

	t.Run("prospecting requires a query", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/prospecting", map[string]string{}, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", rec.Code)
		}
	})
}

func TestDraftsAndCredits(t *testing.T) {
	t.Run("draft returns the result for the session user", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/drafts", map[string]string{"channel": "email", "context": "notes"}, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		if env.drafts.lastUser != "rep-7" {
			t.Fatalf("expected session user, got %q", env.drafts.lastUser)
		}
	})

	t.Run("insufficient credits maps to 402", func(t *testing.T) {
		env := newTestEnv(t)
		env.drafts.draftErr = domain.ErrInsufficientCredits
		rec := env.do(t, http.MethodPost, "/api/v1/drafts", map[string]string{"channel": "email", "context": "x"}, true)
		if rec.Code != http.StatusPaymentRequired {
			t.Fatalf("want 402, got %d", rec.Code)
		}
	})

	t.Run("credits returns balance and ledger", func(t *testing.T) {
		env := newTestEnv(t)
		env.drafts.balance = 900
		env.drafts.entries = []*model.CreditEntry{{ID: "c1", UserID: "rep-7", Delta: -100}}
		rec := env.do(t, http.MethodGet, "/api/v1/credits", nil, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
		var body struct {
			Balance int64                `json:"balance_micro"`
			Recent  []*model.CreditEntry `json:"recent"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Balance != 900 || len(body.Recent) != 1 {
			t.Fatalf("unexpected body: %+v", body)
		}
	})
}

func TestTipAndEntities(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/tip", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/api/v1/entities/prospects/pr-1", map[string]string{"stage": "qualified"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	env.entities.err = fmt.Errorf("%w: unknown kind", domain.ErrInvalidArgument)
	rec = env.do(t, http.MethodPatch, "/api/v1/entities/widgets/w-1", map[string]string{"x": "y"}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestHealthz_Open(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
}
