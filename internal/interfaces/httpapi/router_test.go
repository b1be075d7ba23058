package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/courtside/ranking/internal/infrastructure/repository/memory"
	"github.com/courtside/ranking/internal/platform/cache"
	"github.com/courtside/ranking/internal/platform/id"
	"github.com/courtside/ranking/internal/usecase"
)

const testAdminToken = "test-admin-token"

type envelope struct {
	APIVersion string          `json:"apiVersion"`
	Data       json.RawMessage `json:"data"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, adminToken string, corsOrigins []string) http.Handler {
	t.Helper()

	store := memory.NewStore()
	memory.Seed(store, time.Now().UTC())

	athleteRepo := memory.NewAthleteRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	eventRepo := memory.NewEventRepository(store)
	resultRepo := memory.NewResultRepository(store)
	seasonRepo := memory.NewSeasonRepository(store)

	listCache := cache.NewStore(time.Minute)
	idGen := id.NewRandomGenerator()

	ranking := usecase.NewRankingService(athleteRepo, resultRepo, listCache, 4)
	athletes := usecase.NewAthleteService(athleteRepo, categoryRepo, idGen)
	events := usecase.NewEventService(eventRepo, seasonRepo, idGen)
	results := usecase.NewResultService(athleteRepo, eventRepo, resultRepo, seasonRepo, ranking, idGen)
	categories := usecase.NewCategoryService(athleteRepo, categoryRepo, listCache, nil, nil, idGen)
	seasons := usecase.NewSeasonService(seasonRepo, athleteRepo, listCache, nil, nil, idGen)
	rollovers := usecase.NewRolloverService(seasons, nil, idGen)
	duplicates := usecase.NewDuplicateService(athleteRepo, ranking, nil, nil)
	importer := usecase.NewImportService(athleteRepo, results)

	handler := NewHandler(athletes, ranking, events, results, categories, seasons, rollovers, duplicates, importer, nil)
	return NewRouter(handler, nil, corsOrigins, adminToken)
}

func doRequest(t *testing.T, router http.Handler, method, target, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Admin-Token", token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var parsed envelope
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &parsed), "response body: %s", recorder.Body.String())
	}
	return recorder, parsed
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, testAdminToken, []string{"*"})

	recorder, parsed := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "2.0", parsed.APIVersion)

	var data map[string]string
	require.NoError(t, json.Unmarshal(parsed.Data, &data))
	require.Equal(t, "ok", data["status"])
}

func TestRouter_ListRankings_SeededRoster(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, testAdminToken, []string{"*"})

	recorder, parsed := doRequest(t, router, http.MethodGet, "/v1/rankings?category=C&gender=M", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var entries []rankingEntryDTO
	require.NoError(t, json.Unmarshal(parsed.Data, &entries))
	require.Len(t, entries, 2, "seed holds two male C athletes")
	for idx, entry := range entries {
		require.Equal(t, idx+1, entry.Position)
		require.Equal(t, "C", entry.Category)
		require.Equal(t, "M", entry.Gender)
	}
}

func TestRouter_ListRankings_UnknownCategory(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, testAdminToken, []string{"*"})

	recorder, parsed := doRequest(t, router, http.MethodGet, "/v1/rankings?category=PRO&gender=M", "", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.NotNil(t, parsed.Error)
	require.Equal(t, "INVALID_ARGUMENT", parsed.Error.Status)
	require.Equal(t, "invalidInput", parsed.Error.Errors[0].Reason)
	require.Equal(t, "ranking", parsed.Error.Errors[0].Domain)
}

func TestRouter_GetAthlete_NotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, testAdminToken, []string{"*"})

	recorder, parsed := doRequest(t, router, http.MethodGet, "/v1/athletes/missing", "", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.NotNil(t, parsed.Error)
	require.Equal(t, "NOT_FOUND", parsed.Error.Status)
}

func TestRouter_AdminToken_GuardsWrites(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, testAdminToken, []string{"*"})
	payload := `{"name":"Nova Atleta","gender":"F","category":"D"}`

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		recorder, parsed := doRequest(t, router, http.MethodPost, "/v1/athletes", "", payload)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		require.Equal(t, "UNAUTHENTICATED", parsed.Error.Status)
	})

	t.Run("wrong token", func(t *testing.T) {
		t.Parallel()
		recorder, _ := doRequest(t, router, http.MethodPost, "/v1/athletes", "wrong", payload)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		recorder, parsed := doRequest(t, router, http.MethodPost, "/v1/athletes", testAdminToken, payload)
		require.Equal(t, http.StatusCreated, recorder.Code, "body: %s", recorder.Body.String())

		var created athleteDTO
		require.NoError(t, json.Unmarshal(parsed.Data, &created))
		require.NotEmpty(t, created.ID)
		require.Equal(t, "Nova Atleta", created.Name)
		require.Equal(t, "D", created.Category)
	})
}

func TestRouter_AdminToken_UnconfiguredRejectsEverything(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, "", []string{"*"})

	recorder, parsed := doRequest(t, router, http.MethodPost, "/v1/athletes", "anything", `{"name":"X","gender":"F","category":"D"}`)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Contains(t, parsed.Error.Message, "not configured")
}

func TestRouter_RegisterAthlete_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, testAdminToken, []string{"*"})

	recorder, parsed := doRequest(t, router, http.MethodPost, "/v1/athletes", testAdminToken,
		`{"name":"Nova Atleta","gender":"F","category":"D","nickname":"nope"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "INVALID_ARGUMENT", parsed.Error.Status)
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	t.Run("allowed origin is echoed", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, testAdminToken, []string{"https://app.example.com"})

		req := httptest.NewRequest(http.MethodOptions, "/v1/rankings", nil)
		req.Header.Set("Origin", "https://app.example.com")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusNoContent, recorder.Code)
		require.Equal(t, "https://app.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, recorder.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Token")
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, testAdminToken, []string{"https://app.example.com"})

		req := httptest.NewRequest(http.MethodOptions, "/v1/rankings", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, testAdminToken, []string{"*"})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_RecordResultFlow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, testAdminToken, []string{"*"})

	recorder, parsed := doRequest(t, router, http.MethodPost, "/v1/events/event-opener/results", testAdminToken,
		`{"athleteId":"athlete-jose","placement":"Champion","categoryPlayed":"C"}`)
	require.Equal(t, http.StatusCreated, recorder.Code, "body: %s", recorder.Body.String())

	var created resultDTO
	require.NoError(t, json.Unmarshal(parsed.Data, &created))
	require.Equal(t, 100, created.Points)

	recorder, parsed = doRequest(t, router, http.MethodGet, "/v1/rankings?category=C&gender=M", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var entries []rankingEntryDTO
	require.NoError(t, json.Unmarshal(parsed.Data, &entries))
	require.Equal(t, "athlete-jose", entries[0].AthleteID)
	require.Equal(t, 100, entries[0].Points)
	require.Equal(t, 1, entries[0].Position)

	// Same athlete, same event: the ledger takes one result per pair.
	recorder, _ = doRequest(t, router, http.MethodPost, "/v1/events/event-opener/results", testAdminToken,
		`{"athleteId":"athlete-jose","placement":"Third","categoryPlayed":"C"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
