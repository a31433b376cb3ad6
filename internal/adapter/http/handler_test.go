package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// stubPlanner returns canned results so the handler's decoding and
// error mapping can be exercised without the real workflow.
type stubPlanner struct {
	session  *domain.Session
	status   *port.StatusSummary
	step     *port.StepResult
	state    *domain.WorkflowState
	forecast *domain.Forecast
	chat     *port.ChatResult
	err      error
}

func (s *stubPlanner) Create(context.Context) (*domain.Session, error) { return s.session, s.err }
func (s *stubPlanner) Status(context.Context, uuid.UUID) (*port.StatusSummary, error) {
	return s.status, s.err
}
func (s *stubPlanner) Process(context.Context, uuid.UUID, port.StepInput) (*port.StepResult, error) {
	return s.step, s.err
}
func (s *stubPlanner) Edit(context.Context, uuid.UUID, port.ParamsPatch) (*domain.WorkflowState, error) {
	return s.state, s.err
}
func (s *stubPlanner) Reforecast(context.Context, uuid.UUID) (*domain.Forecast, error) {
	return s.forecast, s.err
}
func (s *stubPlanner) Reset(context.Context, uuid.UUID) (*domain.WorkflowState, error) {
	return s.state, s.err
}
func (s *stubPlanner) Destroy(context.Context, uuid.UUID) error { return s.err }
func (s *stubPlanner) Chat(context.Context, uuid.UUID, string) (*port.ChatResult, error) {
	return s.chat, s.err
}

func serve(t *testing.T, planner port.Planner, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(planner, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func sessionPath(suffix string) string {
	return "/api/v1/sessions/" + uuid.NewString() + suffix
}

func TestCreateSession(t *testing.T) {
	s := domain.NewSession()
	rec := serve(t, &stubPlanner{session: s}, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, s.ID, got.ID)
}

func TestMissingPrerequisiteMapsToConflict(t *testing.T) {
	stub := &stubPlanner{err: domain.NewMissingPrerequisite(domain.StepPreferences, "advertiser")}
	rec := serve(t, stub, http.MethodPost, sessionPath("/process"), `{"text":"hi"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "preferences", body.Step)
	assert.Equal(t, []string{"advertiser"}, body.Missing)
	assert.True(t, body.ProgressRetained)
}

func TestValidationMapsToBadRequest(t *testing.T) {
	stub := &stubPlanner{err: domain.NewValidationError(domain.StepParsing, "budget must be positive")}
	rec := serve(t, stub, http.MethodPost, sessionPath("/edit"), `{"budget":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSessionMapsToNotFound(t *testing.T) {
	stub := &stubPlanner{err: domain.ErrSessionNotFound}
	rec := serve(t, stub, http.MethodGet, sessionPath("/status"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackendUnavailableMapsToServiceUnavailable(t *testing.T) {
	stub := &stubPlanner{err: domain.FailAt(domain.StepForecast, domain.ErrBackendUnavailable)}
	rec := serve(t, stub, http.MethodPost, sessionPath("/reforecast"), "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "forecast", body.Step)
}

func TestGenerationFailedMapsToBadGateway(t *testing.T) {
	stub := &stubPlanner{err: domain.FailAt(domain.StepAudience, domain.ErrGenerationFailed)}
	rec := serve(t, stub, http.MethodPost, sessionPath("/process"), "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestInvalidSessionID(t *testing.T) {
	rec := serve(t, &stubPlanner{}, http.MethodGet, "/api/v1/sessions/not-a-uuid/status", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRequiresMessage(t *testing.T) {
	rec := serve(t, &stubPlanner{}, http.MethodPost, sessionPath("/chat"), `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHappyPath(t *testing.T) {
	stub := &stubPlanner{chat: &port.ChatResult{Intent: domain.IntentConversation, Reply: "hello"}}
	rec := serve(t, stub, http.MethodPost, sessionPath("/chat"), `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got port.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "hello", got.Reply)
}

func TestDestroySession(t *testing.T) {
	rec := serve(t, &stubPlanner{}, http.MethodDelete, sessionPath(""), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(t, &stubPlanner{}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
