package http

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
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

type fixedUsers struct{ users map[int64]*domain.User }

func (f fixedUsers) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, errorutil.NewUpstreamUnavailable("user-service", nil, map[string]any{"status": 404})
}

type panicTickets struct{}

func (panicTickets) ListTicketsByUser(context.Context, int64) ([]domain.Ticket, error) {
	panic("boom")
}

func newTestApp(t *testing.T, tickets service.TicketLookup) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics("test")
	dispatcher := events.NewInMemoryDispatcher()

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   repository.NewMemoryUserRepository(),
		Tickets:    tickets,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewMemoryTicketRepository(),
		Users: fixedUsers{users: map[int64]*domain.User{
			1: {ID: 1, Name: "A", Email: "a@x.com", Phone: "111", Role: domain.RoleCustomer},
		}},
		Dispatcher: dispatcher,
		Clock:      func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) },
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("test", "dev", nil, nil),
		Users:   handlers.NewUsersHandler(userService),
		Tickets: handlers.NewTicketsHandler(ticketService),
		Metrics: metrics,
	})
	return app
}

type response struct {
	status      int
	contentType string
	body        string
	requestID   string
}

func do(t *testing.T, app *fiber.App, method, path, body string) response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        string(raw),
		requestID:   resp.Header.Get("X-Request-ID"),
	}
}

func decode[T any](t *testing.T, r response) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(r.body), &out), r.body)
	return out
}

func TestUserRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	created := do(t, app, http.MethodPost, "/users", `{"name":"A","email":"a@x.com","phone":"111","role":"CUSTOMER"}`)
	require.Equal(t, http.StatusCreated, created.status, created.body)
	assert.JSONEq(t, `{"id":1,"name":"A","email":"a@x.com","phone":"111","role":"CUSTOMER"}`, created.body)
	assert.NotEmpty(t, created.requestID)

	dup := do(t, app, http.MethodPost, "/users", `{"name":"B","email":"a@x.com","phone":"222","role":"CUSTOMER"}`)
	assert.Equal(t, http.StatusConflict, dup.status)
	assert.JSONEq(t, `{}`, dup.body)

	exec := do(t, app, http.MethodPost, "/users", `{"name":"E","email":"e@x.com","phone":"333","role":"EXECUTIVE"}`)
	require.Equal(t, http.StatusCreated, exec.status)

	blankName := do(t, app, http.MethodPost, "/users", `{"name":"   ","email":"b@x.com","phone":"555","role":"CUSTOMER"}`)
	assert.Equal(t, http.StatusBadRequest, blankName.status)
	assert.Contains(t, blankName.body, `"name":"notblank"`)

	invalid := do(t, app, http.MethodPost, "/users", `{"name":"X","email":"nope","phone":"444","role":"CUSTOMER"}`)
	assert.Equal(t, http.StatusBadRequest, invalid.status)
	assert.Contains(t, invalid.body, errorutil.CodeValidation)

	byEmail := do(t, app, http.MethodGet, "/users/by-email/e%40x.com", "")
	require.Equal(t, http.StatusOK, byEmail.status, byEmail.body)
	assert.Equal(t, "E", decode[userBody](t, byEmail).Name)

	byPhone := do(t, app, http.MethodGet, "/users/by-phone/111", "")
	require.Equal(t, http.StatusOK, byPhone.status)
	assert.Equal(t, int64(1), decode[userBody](t, byPhone).ID)

	missing := do(t, app, http.MethodGet, "/users/by-id/42", "")
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, "user not found", missing.body)
	assert.True(t, strings.HasPrefix(missing.contentType, "text/plain"))

	badID := do(t, app, http.MethodGet, "/users/by-id/abc", "")
	assert.Equal(t, http.StatusBadRequest, badID.status)

	customers := decode[[]userBody](t, do(t, app, http.MethodGet, "/users/customer", ""))
	executives := decode[[]userBody](t, do(t, app, http.MethodGet, "/users/executive", ""))
	all := decode[[]userBody](t, do(t, app, http.MethodGet, "/users", ""))
	require.Len(t, customers, 1)
	require.Len(t, executives, 1)
	assert.Len(t, all, 2)
	assert.NotEqual(t, customers[0].ID, executives[0].ID)

	updated := do(t, app, http.MethodPut, "/users/1", `{"id":99,"name":"A2","email":"a2@x.com","phone":"111","role":"ADMIN"}`)
	require.Equal(t, http.StatusOK, updated.status, updated.body)
	assert.JSONEq(t, `{"id":1,"name":"A2","email":"a2@x.com","phone":"111","role":"ADMIN"}`, updated.body)

	conflict := do(t, app, http.MethodPut, "/users/1", `{"name":"A2","email":"e@x.com","phone":"111","role":"ADMIN"}`)
	assert.Equal(t, http.StatusConflict, conflict.status)

	updateMissing := do(t, app, http.MethodPut, "/users/42", `{"name":"Z","email":"z@x.com","phone":"9","role":"ADMIN"}`)
	assert.Equal(t, http.StatusNotFound, updateMissing.status)

	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/users/2", "").status)
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/users/2", "").status)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/users/by-id/2", "").status)
}

type userBody struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ticketBody struct {
	ID         int64   `json:"id"`
	Issue      string  `json:"issue"`
	RaisedBy   int64   `json:"raisedBy"`
	RaisedOn   string  `json:"raisedOn"`
	AssignedTo *int64  `json:"assignedTo"`
	AssignedOn *string `json:"assignedOn"`
	ClosedOn   *string `json:"closedOn"`
	Status     string  `json:"status"`
}

func TestTicketRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	created := do(t, app, http.MethodPost, "/tickets", `{"issue":"printer","raisedBy":1,"raisedOn":"2024-01-01","status":"OPEN"}`)
	require.Equal(t, http.StatusCreated, created.status, created.body)
	assert.JSONEq(t, `{"id":1,"issue":"printer","raisedBy":1,"raisedOn":"2024-01-01","assignedTo":null,"assignedOn":null,"closedOn":null,"status":"OPEN"}`, created.body)

	defaults := decode[ticketBody](t, do(t, app, http.MethodPost, "/tickets", `{"issue":"vpn","raisedBy":2}`))
	assert.Equal(t, "2024-01-05", defaults.RaisedOn)
	assert.Equal(t, "OPEN", defaults.Status)

	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/tickets", `{"raisedBy":1}`).status)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/tickets", `{"issue":"x","raisedBy":1,"raisedOn":"01/02/2024"}`).status)

	assigned := decode[ticketBody](t, do(t, app, http.MethodPatch, "/tickets/1/2", ""))
	assert.Equal(t, "ASSIGNED", assigned.Status)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, int64(2), *assigned.AssignedTo)
	require.NotNil(t, assigned.AssignedOn)
	assert.Equal(t, "2024-01-05", *assigned.AssignedOn)

	again := do(t, app, http.MethodPatch, "/tickets/1/2", "")
	assert.Equal(t, http.StatusOK, again.status)
	assert.Equal(t, assigned, decode[ticketBody](t, again))

	byAssignee := decode[[]ticketBody](t, do(t, app, http.MethodGet, "/tickets/assigned/2", ""))
	require.Len(t, byAssignee, 1)
	assert.Equal(t, int64(1), byAssignee[0].ID)

	closed := decode[ticketBody](t, do(t, app, http.MethodPatch, "/tickets/1", ""))
	assert.Equal(t, "CLOSED", closed.Status)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPatch, "/tickets/1", "").status)

	byStatus := decode[[]ticketBody](t, do(t, app, http.MethodGet, "/tickets/status/CLOSED", ""))
	require.Len(t, byStatus, 1)

	raised := decode[[]ticketBody](t, do(t, app, http.MethodGet, "/tickets/users/1", ""))
	require.Len(t, raised, 1)
	assert.Equal(t, int64(1), raised[0].ID)

	none := do(t, app, http.MethodGet, "/tickets/users/7", "")
	assert.Equal(t, http.StatusOK, none.status)
	assert.JSONEq(t, `[]`, none.body)

	updated := do(t, app, http.MethodPut, "/tickets", `{"id":2,"issue":"vpn down","raisedBy":2,"status":"ASSIGNED","assignedTo":5}`)
	require.Equal(t, http.StatusOK, updated.status, updated.body)
	got := decode[ticketBody](t, do(t, app, http.MethodGet, "/tickets/2", ""))
	assert.Equal(t, "vpn down", got.Issue)
	assert.Equal(t, "ASSIGNED", got.Status)
	assert.Equal(t, "2024-01-05", got.RaisedOn)

	withoutStatus := do(t, app, http.MethodPut, "/tickets", `{"id":2,"issue":"vpn flaky","raisedBy":2}`)
	require.Equal(t, http.StatusOK, withoutStatus.status, withoutStatus.body)
	assert.Equal(t, "ASSIGNED", decode[ticketBody](t, withoutStatus).Status)
	assigned2 := decode[[]ticketBody](t, do(t, app, http.MethodGet, "/tickets/status/ASSIGNED", ""))
	require.Len(t, assigned2, 1)
	assert.Equal(t, int64(2), assigned2[0].ID)

	blankIssue := do(t, app, http.MethodPut, "/tickets", `{"id":2,"issue":"   ","raisedBy":2}`)
	assert.Equal(t, http.StatusBadRequest, blankIssue.status)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/tickets", `{"issue":"  ","raisedBy":1}`).status)

	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPut, "/tickets", `{"id":42,"issue":"x","raisedBy":1}`).status)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPut, "/tickets", `{"issue":"x","raisedBy":1}`).status)

	missing := do(t, app, http.MethodGet, "/tickets/42", "")
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, "ticket not found", missing.body)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPatch, "/tickets/42", "").status)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPatch, "/tickets/42/2", "").status)

	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/tickets/2", "").status)
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/tickets/2", "").status)
	assert.Len(t, decode[[]ticketBody](t, do(t, app, http.MethodGet, "/tickets", "")), 1)
}

func TestUserDTOProxy(t *testing.T) {
	app := newTestApp(t, nil)

	found := do(t, app, http.MethodGet, "/tickets/userdto/1", "")
	require.Equal(t, http.StatusOK, found.status)
	assert.JSONEq(t, `{"id":1,"name":"A","email":"a@x.com","phone":"111","role":"CUSTOMER"}`, found.body)

	upstream := do(t, app, http.MethodGet, "/tickets/userdto/9", "")
	assert.Equal(t, http.StatusInternalServerError, upstream.status)
	assert.Contains(t, upstream.body, errorutil.CodeUpstreamUnavailable)
}

func TestErrorMiddleware(t *testing.T) {
	app := newTestApp(t, panicTickets{})

	unknown := do(t, app, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, unknown.status)

	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/users", `{"name":"A","email":"a@x.com","phone":"111","role":"CUSTOMER"}`).status)
	panicked := do(t, app, http.MethodGet, "/users/1/tickets", "")
	assert.Equal(t, http.StatusInternalServerError, panicked.status)
	assert.Contains(t, panicked.body, errorutil.CodeInternal)

	malformed := do(t, app, http.MethodPost, "/users", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, malformed.status)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)

	live := do(t, app, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, live.status)

	ready := do(t, app, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, ready.status)
	assert.JSONEq(t, `{"status":"ready","dependencies":{"postgres":"disabled","redis":"disabled"}}`, ready.body)

	metrics := do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, metrics.status)
	assert.Contains(t, metrics.body, "test_http_requests_total")
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "given-id")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "given-id", resp.Header.Get("X-Request-ID"))
}
