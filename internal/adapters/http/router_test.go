package http

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/adapters/blob"
	"github.com/atvirokodosprendimai/assettrack/internal/adapters/db/sqlstore"
	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *application.InventoryService) {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlstore.Open(sqlstore.Options{Driver: sqlstore.DriverSQLite, DSN: filepath.Join(dir, "router_test.db")})
	require.NoError(t, err)
	require.NoError(t, sqlstore.RunMigrations(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svc := application.NewInventoryService(sqlstore.NewRepository(db), blob.NewMemory(),
		application.WithStagingDir(filepath.Join(dir, "staging")),
		application.WithClock(func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }),
	)
	srv := httptest.NewServer(NewRouter(svc, opts))
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func login(t *testing.T, srv *httptest.Server, svc *application.InventoryService) string {
	t.Helper()
	require.NoError(t, svc.BootstrapAdmin(context.Background(), "admin", "secret"))
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/ntdtb/users", "", map[string]string{"Username": "admin", "Password": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestLoginAndProfile(t *testing.T) {
	srv, svc := newTestServer(t, Options{})
	token := login(t, srv, svc)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", body["Username"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "no authorization header", body["message"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/user/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/ntdtb/users", "", map[string]string{"Username": "admin", "Password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestRequireAuthGuardsAPI(t *testing.T) {
	srv, svc := newTestServer(t, Options{RequireAuth: true})

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/equipement", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := login(t, srv, svc)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/equipement", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "data")
}

func TestEquipmentValidationReportsFields(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/equipment", "", map[string]string{"Equipe_Name": "Switch"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["errors"])

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/equipment", strings.NewReader("{broken"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestItemLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	api := srv.URL + "/api"

	resp, body := doJSON(t, http.MethodPost, api+"/rooms/node", "", map[string]string{"name": "HQ", "location": "B-001", "building": "Main"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	node := body["node"].(map[string]any)
	assert.Equal(t, "N00000001", node["id"])

	resp, body = doJSON(t, http.MethodPost, api+"/rooms/node", "", map[string]string{"name": "HQ", "location": "B-002"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "a branch named HQ already exists", body["message"])

	resp, body = doJSON(t, http.MethodPost, api+"/rooms/room", "", map[string]string{"floor": "1", "name": "Server room", "nodeId": "N00000001"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	room := body["room"].(map[string]any)
	assert.Equal(t, "R00000001", room["id"])
	assert.Equal(t, "OBJ00001", body["object"].(map[string]any)["id"])

	resp, body = doJSON(t, http.MethodPost, api+"/equipment", "", map[string]string{
		"Equipe_Photo": "data:image/png;base64,AAAA",
		"Equipe_Name":  "Switch",
		"Equipe_Type":  "network",
		"Model_Number": "SW-1",
		"Brand":        "Acme",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "E00000001", body["Equipe_ID"])

	resp, body = doJSON(t, http.MethodPost, api+"/objects/OBJ00001/items", "", map[string]string{
		"User_ID": "U00000001", "Equipe_ID": "E00000001", "Serial_Number": "SN-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "I00000001", body["itemId"])

	resp, body = doJSON(t, http.MethodPut, api+"/item/I00000001", "", map[string]string{
		"Item_Status": "active", "Object_ID": "OBJ00001", "Item_Others": "checked",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["statusChanged"])
	assert.NotContains(t, body, "statusId")

	resp, body = doJSON(t, http.MethodPost, api+"/changestatus", "", map[string]string{
		"Item_ID": "I00000001", "Item_history_Status": "repair", "Item_history_Other": "fan noise",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "S00000001", body["statusId"])

	resp, body = doJSON(t, http.MethodGet, api+"/item/history/I00000001", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := body["data"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, "repair", history[0].(map[string]any)["Item_history_Status"])

	resp, body = doJSON(t, http.MethodDelete, api+"/rooms/node/N00000001", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = doJSON(t, http.MethodDelete, api+"/item/I00000001", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, api+"/item/I00000001", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSuggestionsRejectUnknownType(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/equipment/suggestions?type=branch_name&search=a", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, body["suggestions"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/rooms/suggestions?type=branch_name&search=a", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "suggestions")
}

func TestUploadChunksThenServe(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	payload := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	half := len(payload) / 2

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/upload-chunk", "", map[string]any{
		"imageId": "photo1", "chunk": payload[:half], "chunkIndex": 0, "totalChunks": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Chunk uploaded successfully", body["message"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/upload-chunk", "", map[string]any{
		"imageId": "photo1", "chunk": payload[half:], "chunkIndex": 1, "totalChunks": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "uploads/photo1.jpg", body["imagePath"])

	got, err := http.Get(srv.URL + "/uploads/photo1.jpg")
	require.NoError(t, err)
	defer got.Body.Close()
	raw, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, "image/jpeg", got.Header.Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", string(raw))

	missing, err := http.Get(srv.URL + "/uploads/nope.jpg")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestRateLimitReturns429(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMin: 2})

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too many requests", body["message"])
}

func TestLimitEndpoint(t *testing.T) {
	assert.Equal(t, "/api/item", limitEndpoint("/api/item/I00000001"))
	assert.Equal(t, "/healthz", limitEndpoint("/healthz"))
}
