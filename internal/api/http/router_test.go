package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	helpdesk := config.HelpdeskConfig{DefaultRequesterID: "user-1", DefaultActor: "Current User", Timezone: "UTC"}

	kv := storage.NewMemory()
	repo := repository.NewCollectionTicketRepository(kv, fixtures.Tickets())
	require.NoError(t, repo.Initialize(ctx, fixtures.Tickets()))
	settingsRepo := repository.NewSettingsRepository(kv, nil)
	directory := repository.NewDirectory(fixtures.Users(), fixtures.Agents())
	kb := repository.NewKnowledgeRepository(fixtures.Articles())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	metrics.RegisterHandlers(dispatcher)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	assigner := service.NewAssignmentService(service.AssignmentDependencies{TicketRepo: repo, Directory: directory, Dispatcher: dispatcher})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    repo,
		Directory:     directory,
		KnowledgeRepo: kb,
		Assigner:      assigner,
		Dispatcher:    dispatcher,
		Config:        helpdesk,
		Seed:          fixtures.Tickets(),
	})
	knowledge := service.NewKnowledgeService(kb)

	app := fiber.New()
	apihttp.RegisterMiddlewares(app, nil, metrics, 5*time.Second)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:  handlers.NewHealthHandler("helpdesk-service", "test", config.BackendMemory, kv),
		Session: handlers.NewSessionHandler(service.NewSessionService(directory, tokens, nil), directory),
		Tickets: handlers.NewTicketsHandler(tickets),
		Approvals: handlers.NewApprovalsHandler(service.NewApprovalService(service.ApprovalDependencies{
			TicketRepo: repo,
			Dispatcher: dispatcher,
			Config:     helpdesk,
		})),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(service.DashboardDependencies{TicketRepo: repo})),
		Knowledge:      handlers.NewKnowledgeHandler(knowledge, service.NewSearchService(tickets, knowledge)),
		Settings:       handlers.NewSettingsHandler(service.NewSettingsService(settingsRepo, nil), tickets),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body, token string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func sessionToken(t *testing.T, app *fiber.App, subjectType, id string) string {
	t.Helper()
	resp, env := do(t, app, http.MethodPost, "/auth/session", `{"subjectType":"`+subjectType+`","subjectId":"`+id+`"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestCreateTicketEndpoint(t *testing.T) {
	app := newTestApp(t)

	body := `{"subject":"Docking station flickers","description":"The monitor attached to my dock flickers every few minutes.","category":"hardware","priority":"high"}`
	resp, env := do(t, app, http.MethodPost, "/tickets", body, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "TKT-009", created.ID)
	assert.Equal(t, "open", created.Status)
	assert.Equal(t, "high", created.Priority)

	resp, env = do(t, app, http.MethodGet, "/tickets/TKT-009", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		ID  string `json:"id"`
		SLA struct {
			Status string `json:"status"`
		} `json:"sla"`
		Timeline []struct {
			Kind string `json:"kind"`
		} `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "TKT-009", detail.ID)
	assert.Equal(t, "on-track", detail.SLA.Status)
	require.Len(t, detail.Timeline, 1)
	assert.Equal(t, "activity", detail.Timeline[0].Kind)
}

func TestCreateTicketRejectsInvalidPayload(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, http.MethodPost, "/tickets", `{"subject":`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	resp, env = do(t, app, http.MethodPost, "/tickets", `{"subject":"VPN","description":"short","category":"hardware"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Subject must be at least 5 characters", env.Error.Details["subject"])
	assert.Equal(t, "Please provide more details (at least 20 characters)", env.Error.Details["description"])
}

func TestUnknownTicketIsNotFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/tickets/TKT-404", "/tickets/TKT-404/sla", "/nowhere"} {
		resp, env := do(t, app, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, "NOT_FOUND", env.Error.Code, path)
	}
}

func TestListTicketsQuery(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, http.MethodGet, "/tickets?status=open&sort=id&order=asc", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "TKT-001", page.Items[0].ID)

	resp, env = do(t, app, http.MethodGet, "/tickets?page=9223372036854775807&page_size=5", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var far struct {
		Items    []json.RawMessage `json:"items"`
		Total    int               `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &far))
	assert.Empty(t, far.Items, "a page past the end is empty")
	assert.Equal(t, 8, far.Total)
	assert.Equal(t, 21474836, far.Page)
	assert.Equal(t, 5, far.PageSize)

	resp, env = do(t, app, http.MethodGet, "/tickets?status=bogus", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "status")
}

func TestUserSessionRestrictions(t *testing.T) {
	app := newTestApp(t)
	token := sessionToken(t, app, "USER", "user-2")

	resp, _ := do(t, app, http.MethodPost, "/tickets/TKT-001/comments", `{"content":"Internal only","isInternal":true}`, token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPatch, "/tickets/TKT-001", `{"status":"closed"}`, token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/tickets/TKT-001/comments", `{"content":"Still happening on my side"}`, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := do(t, app, http.MethodGet, "/tickets", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestAgentUpdatesTicket(t *testing.T) {
	app := newTestApp(t)
	token := sessionToken(t, app, "AGENT", "agent-1")

	resp, env := do(t, app, http.MethodPatch, "/tickets/TKT-001", `{"status":"in_progress"}`, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated struct {
		Status     string `json:"status"`
		Activities []struct {
			Type     string `json:"type"`
			User     string `json:"user"`
			NewValue string `json:"newValue"`
		} `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "in_progress", updated.Status)
	require.NotEmpty(t, updated.Activities)
	assert.Equal(t, "status_changed", updated.Activities[0].Type)
	assert.Equal(t, "Alex Turner", updated.Activities[0].User)
	assert.Equal(t, "In Progress", updated.Activities[0].NewValue)
}

func TestDashboardAndReportEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, http.MethodGet, "/dashboard/stats?critical=active", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		TotalTickets int `json:"totalTickets"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 8, stats.TotalTickets)

	resp, _ = do(t, app, http.MethodGet, "/dashboard/stats?critical=some", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/dashboard/volume?days=400", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/analytics/report.xlsx", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "spreadsheetml")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "analytics-report-")
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	do(t, app, http.MethodGet, "/tickets", "", "")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "http_requests_total")
	assert.Contains(t, string(raw), `status="200"`)
}
