package controllers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaops/pond-miniapp/modules/miniapp"
	"github.com/aquaops/pond-miniapp/modules/miniapp/presentation/controllers"
	"github.com/aquaops/pond-miniapp/pkg/application"
	"github.com/aquaops/pond-miniapp/pkg/configuration"
	"github.com/aquaops/pond-miniapp/pkg/constants"
	"github.com/aquaops/pond-miniapp/pkg/httpapi"
	"github.com/aquaops/pond-miniapp/pkg/middleware"
	"github.com/aquaops/pond-miniapp/pkg/server"
)

type backendStub struct {
	mu       sync.Mutex
	role     string
	received map[string][]map[string]any
}

func (b *backendStub) record(path string, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.received[path] = append(b.received[path], body)
}

func (b *backendStub) calls(path string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.received[path]
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/miniapp/locations":
		_, _ = io.WriteString(w, `{"success":true,"locations":["Пруд 1","Пруд 2"]}`)
	case "/miniapp/fishTypes":
		_, _ = io.WriteString(w, `{"success":true,"fishTypes":["Карп","Амур"]}`)
	case "/users/getUser":
		b.mu.Lock()
		role := b.role
		b.mu.Unlock()
		_, _ = io.WriteString(w, `{"telegramId":42,"fullname":"Иван","phone":"+998","role":"`+role+`","status":"ACCEPTED"}`)
	case "/users/getUsers":
		_, _ = io.WriteString(w, `[{"telegramId":42,"fullname":"Иван","role":"ADMIN","status":"ACCEPTED"},{"telegramId":5,"fullname":"Олег","role":"USER","status":"PENDING"}]`)
	default:
		b.record(r.URL.Path, r)
		_, _ = io.WriteString(w, `{"success":true,"message":"Сохранено"}`)
	}
}

func newTestHandler(t *testing.T, role string) (http.Handler, *backendStub) {
	t.Helper()
	stub := &backendStub{role: role, received: map[string][]map[string]any{}}
	backendSrv := httptest.NewServer(stub)
	t.Cleanup(backendSrv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	conf := &configuration.Configuration{
		Backend: configuration.BackendOptions{URL: backendSrv.URL, Timeout: time.Second},
		Drafts:  configuration.DraftOptions{Storage: "memory"},
		Catalog: configuration.CatalogOptions{TTL: time.Minute},
	}
	app := application.New(&application.ApplicationOptions{Logger: logger})
	app.RegisterMiddleware(middleware.ProvideInitData())
	require.NoError(t, miniapp.NewModule(&miniapp.ModuleOptions{Config: conf}).Register(app))

	srv := server.NewHTTPServer(app, controllers.NotFound(nil), controllers.MethodNotAllowed(nil))
	return srv.Router(), stub
}

func initData(userID int, lang string) string {
	v := url.Values{}
	v.Set("query_id", "AAE")
	v.Set("user", `{"id":`+strconv.Itoa(userID)+`,"first_name":"Иван","language_code":"`+lang+`"}`)
	v.Set("hash", "abc")
	return v.Encode()
}

func do(t *testing.T, h http.Handler, method, path, identity, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		req.Header.Set(constants.InitDataHeader, identity)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpapi.ErrorEnvelope {
	t.Helper()
	var env httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestMiniApp_IdentityRequired(t *testing.T) {
	h, _ := newTestHandler(t, "USER")

	rec := do(t, h, http.MethodGet, "/api/v1/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, "IDENTITY_REQUIRED", env.Code)
	assert.Equal(t, "Откройте приложение из Telegram, чтобы продолжить", env.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/main", nil)
	req.Header.Set("Accept-Language", "en")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Open the app from Telegram to continue", decodeError(t, rec).Message)
}

func TestMiniApp_PublicCatalogs(t *testing.T) {
	h, _ := newTestHandler(t, "USER")

	rec := do(t, h, http.MethodGet, "/api/v1/catalogs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{"Пруд 1", "Пруд 2"}, body["locations"])
	assert.Equal(t, []any{"Карп", "Амур"}, body["fishTypes"])
	assert.NotEmpty(t, body["measurementTypes"])

	rec = do(t, h, http.MethodGet, "/api/v1/variants", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var variants []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &variants))
	require.Len(t, variants, 6)
	assert.Equal(t, "main", variants[0]["key"])
}

func TestMiniApp_Me(t *testing.T) {
	h, _ := newTestHandler(t, "ADMIN")

	rec := do(t, h, http.MethodGet, "/api/v1/me", initData(42, "ru"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.InDelta(t, 42, me["telegramId"], 0)
	assert.Equal(t, true, me["registered"])
	assert.Equal(t, true, me["isAdmin"])
}

func TestMiniApp_FillAndSubmitMainForm(t *testing.T) {
	h, stub := newTestHandler(t, "USER")
	identity := initData(42, "ru")

	rec := do(t, h, http.MethodPut, "/api/v1/shared", identity, `{"date":"2024-05-01","location":"Пруд 1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/v1/forms/main/fields/oxygen", identity, `{"value":"5,50"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "2024-05-01", d["date"])
	assert.Equal(t, "Пруд 1", d["location"])

	rec = do(t, h, http.MethodPost, "/api/v1/forms/main/submit", identity, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Message string `json:"message"`
		Draft   struct {
			Location string            `json:"location"`
			Values   map[string]string `json:"values"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Сохранено", res.Message)
	assert.Equal(t, "Пруд 1", res.Draft.Location, "shared context survives a reset")
	assert.Empty(t, res.Draft.Values["oxygen"])

	sent := stub.calls("/miniapp/submitMainForm")
	require.Len(t, sent, 1)
	assert.Equal(t, "2024-05-01", sent[0]["date"])
	assert.Equal(t, "Пруд 1", sent[0]["location"])
	assert.Equal(t, "5.5", sent[0]["oxygen"])
}

func TestMiniApp_SubmitWithoutValues(t *testing.T) {
	h, stub := newTestHandler(t, "USER")
	identity := initData(42, "ru")

	rec := do(t, h, http.MethodPut, "/api/v1/shared", identity, `{"location":"Пруд 2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/forms/main/submit", identity, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
	assert.Empty(t, stub.calls("/miniapp/submitMainForm"))
}

func TestMiniApp_SharedValidation(t *testing.T) {
	h, _ := newTestHandler(t, "USER")
	identity := initData(42, "ru")

	rec := do(t, h, http.MethodPut, "/api/v1/shared", identity, `{"date":"01.05.2024"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, "INVALID_REQUEST", env.Code)
	assert.Contains(t, env.Fields, "Date")

	rec = do(t, h, http.MethodPut, "/api/v1/shared", identity, `{"location":"пруд"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env = decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Equal(t, "Такого пруда нет в списке", env.Fields["location"])
	assert.ElementsMatch(t, []string{"Пруд 1", "Пруд 2"}, env.Suggestions)

	rec = do(t, h, http.MethodPut, "/api/v1/shared", identity, `{`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
}

func TestMiniApp_UnknownVariantAndField(t *testing.T) {
	h, _ := newTestHandler(t, "USER")
	identity := initData(42, "ru")

	rec := do(t, h, http.MethodGet, "/api/v1/forms/harvest", identity, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_VARIANT", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPut, "/api/v1/forms/main/fields/salinity", identity, `{"value":"1"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_FIELD", decodeError(t, rec).Code)
}

func TestMiniApp_RowsLifecycle(t *testing.T) {
	h, _ := newTestHandler(t, "USER")
	identity := initData(42, "ru")

	rec := do(t, h, http.MethodPut, "/api/v1/forms/control-catch/rows/1/value", identity, `{"value":"3"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d struct {
		Rows []struct {
			ID     int               `json:"id"`
			Values map[string]string `json:"values"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Len(t, d.Rows, 2, "filling the last row appends a blank one")
	assert.Equal(t, "3", d.Rows[0].Values["value"])

	rec = do(t, h, http.MethodDelete, "/api/v1/forms/control-catch/rows/1", identity, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Len(t, d.Rows, 1)
	assert.Empty(t, d.Rows[0].Values["value"])

	rec = do(t, h, http.MethodPut, "/api/v1/forms/control-catch/rows/abc/value", identity, `{"value":"3"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_AdminOnly(t *testing.T) {
	h, stub := newTestHandler(t, "USER")
	identity := initData(42, "ru")

	rec := do(t, h, http.MethodGet, "/api/v1/admin/users", identity, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/admin/users/5/promote", identity, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, stub.calls("/users/update"))
}

func TestUsers_AdminActions(t *testing.T) {
	h, stub := newTestHandler(t, "ADMIN")
	identity := initData(42, "ru")

	rec := do(t, h, http.MethodGet, "/api/v1/admin/users", identity, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var users []struct {
		TelegramID int64    `json:"telegramId"`
		Actions    []string `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, []string{"decline", "demote"}, users[0].Actions)
	assert.Equal(t, []string{"accept", "decline", "promote", "delete"}, users[1].Actions)

	rec = do(t, h, http.MethodPost, "/api/v1/admin/users/5/promote", identity, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updates := stub.calls("/users/update")
	require.Len(t, updates, 1)
	assert.InDelta(t, 42, updates[0]["editorId"], 0)
	assert.InDelta(t, 5, updates[0]["userId"], 0)
	assert.Equal(t, "ADMIN", updates[0]["role"])

	rec = do(t, h, http.MethodPost, "/api/v1/admin/users/5/ban", identity, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/admin/users/5", identity, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, stub.calls("/users/delete"), 1)

	rec = do(t, h, http.MethodDelete, "/api/v1/admin/users/42", identity, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SELF_DELETE", decodeError(t, rec).Code)
	assert.Equal(t, "Нельзя удалить собственную учетную запись", decodeError(t, rec).Message)
	require.Len(t, stub.calls("/users/delete"), 1)
}

func TestRouter_JSONFallbacks(t *testing.T) {
	h, _ := newTestHandler(t, "USER")

	rec := do(t, h, http.MethodGet, "/api/v1/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
