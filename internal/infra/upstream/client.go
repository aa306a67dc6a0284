package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/config"
	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/infra/metrics"
)

// listCap bounds every list call; the upstream API caps list responses
// anyway, this just makes the request explicit.
const listCap = 120

// Error is a normalized upstream failure: transport problems, non-2xx
// responses and undecodable bodies all surface as *Error. Status is zero for
// pure transport failures.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return "upstream: " + e.Message
	}
	return fmt.Sprintf("upstream: http %d: %s", e.Status, e.Message)
}

// Compile-time assurance this client satisfies the port
var _ adapter.SalesAPI = (*Client)(nil)

// Client is the authenticated HTTP client onto the platform REST API. It
// holds no per-request state, so repeated polls of the same endpoints are
// safe by construction.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
	log    *zerolog.Logger
}

func NewClient(cfg config.UpstreamConfig, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "upstream").Logger()
	return &Client{
		base:   cfg.BaseURL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    &l,
	}
}

type startJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (c *Client) StartResearch(ctx context.Context, req adapter.ResearchRequest) (string, error) {
	if req.ProspectID == "" && req.CompanyDomain == "" {
		return "", fmt.Errorf("%w: research needs a prospect id or company domain", domain.ErrInvalidArgument)
	}
	var resp startJobResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/research", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

func (c *Client) StartProspecting(ctx context.Context, req adapter.ProspectingRequest) (string, error) {
	if req.Query == "" {
		return "", fmt.Errorf("%w: prospecting query is empty", domain.ErrInvalidArgument)
	}
	if req.Limit <= 0 || req.Limit > listCap {
		req.Limit = listCap
	}
	var resp startJobResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/prospecting", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (*model.JobEntity, error) {
	var job model.JobEntity
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) ListProposals(ctx context.Context) (*adapter.ProposalList, error) {
	var list adapter.ProposalList
	path := "/api/v1/proposals?limit=" + strconv.Itoa(listCap)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// proposalActionResponse covers both shapes the action endpoints return:
// either the updated entity or a bare {"success": bool}.
type proposalActionResponse struct {
	model.Proposal
	Success *bool `json:"success,omitempty"`
}

func (c *Client) ProposalAction(ctx context.Context, id string, action model.ProposalAction, body any) (*model.Proposal, error) {
	var resp proposalActionResponse
	path := "/api/v1/proposals/" + url.PathEscape(id) + "/" + string(action)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Success != nil && !*resp.Success {
		return nil, &Error{Message: fmt.Sprintf("%s rejected by server", action)}
	}
	if resp.Proposal.ID == "" {
		return nil, nil // bare success, no entity returned
	}
	p := resp.Proposal
	return &p, nil
}

func (c *Client) PatchEntity(ctx context.Context, kind, id string, fields map[string]any) (json.RawMessage, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty patch", domain.ErrInvalidArgument)
	}
	var raw json.RawMessage
	path := "/api/v1/" + url.PathEscape(kind) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, fields, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) DueSnoozed(ctx context.Context, now time.Time) ([]string, error) {
	var resp struct {
		IDs []string `json:"ids"`
	}
	path := "/api/v1/proposals/snoozed/due?at=" + url.QueryEscape(now.UTC().Format(time.RFC3339))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (c *Client) TipOfTheDay(ctx context.Context) (string, error) {
	var resp struct {
		Tip string `json:"tip"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tips/today", nil, &resp); err != nil {
		return "", err
	}
	return resp.Tip, nil
}

// errorBody is the upstream's error envelope; some endpoints nest it, some
// return a flat message.
type errorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: "encode request: " + err.Error()}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(method, 0, time.Since(start))
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		msg := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb); err == nil {
			if eb.Error != nil && eb.Error.Message != "" {
				msg = eb.Error.Message
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	return nil
}
