package handler_test

import (
	"AssetVault/internal/handler"
	"AssetVault/internal/repo"
	"AssetVault/internal/repo/repotest"
	"AssetVault/internal/service"
	"AssetVault/internal/storage/storagetest"
	"AssetVault/router"
	"AssetVault/utils"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testMaxBytes = 1024

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  *storagetest.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := repotest.Open(t)
	users := repo.NewUserRepo(db)
	assets := repo.NewAssetRepo(db)
	activity := repo.NewActivityRepo(db)
	store := storagetest.NewMemory()
	tokens := utils.NewTokenManager("handler-secret", time.Hour)

	userSvc := service.NewUserService(users, tokens, activity, nil)
	assetSvc := service.NewAssetService(assets, store, nil, activity, nil, service.AssetServiceConfig{
		MaxBytes: testMaxBytes,
		TempDir:  t.TempDir(),
	})
	statsSvc := service.NewStatsService(assets, users)
	if err := userSvc.EnsureAdmin(context.Background(), "admin@test.com", "adminpass"); err != nil {
		t.Fatalf("seed admin failed: %v", err)
	}

	h := handler.New(userSvc, assetSvc, statsSvc, testMaxBytes)
	engine := router.InitRouter(h, router.Options{
		Tokens: tokens,
		Health: map[string]handler.Pinger{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
	})
	return &testServer{t: t, engine: engine, store: store}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	return s.do(method, path, token, body, "application/json")
}

func (s *testServer) register(name, email string) {
	s.t.Helper()
	w := s.doJSON(http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w := s.doJSON(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &resp)
	return resp.Token
}

type uploadForm struct {
	filename    string
	contentType string
	data        []byte
	tags        string
	permissions string
}

func (s *testServer) upload(token string, form uploadForm) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, form.filename))
	header.Set("Content-Type", form.contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		s.t.Fatalf("create part: %v", err)
	}
	part.Write(form.data)
	if form.tags != "" {
		mw.WriteField("tags", form.tags)
	}
	if form.permissions != "" {
		mw.WriteField("permissions", form.permissions)
	}
	mw.Close()
	return s.do(http.MethodPost, "/assets/upload", token, &buf, mw.FormDataContentType())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	decode(t, w, &resp)
	return resp.Error.Kind
}

type assetBody struct {
	ID          string   `json:"id"`
	Filename    string   `json:"filename"`
	Locator     string   `json:"locator"`
	OwnerID     uint64   `json:"owner_id"`
	Size        int64    `json:"size"`
	MimeType    string   `json:"mimetype"`
	Tags        []string `json:"tags"`
	DownloadURL string   `json:"download_url"`
	Permissions struct {
		Public bool `json:"public"`
	} `json:"permissions"`
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("Ann", "ann@test.com")

	w := s.doJSON(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@test.com", "password": "secret1",
	})
	if w.Code != http.StatusBadRequest || errorKind(t, w) != "conflict" {
		t.Fatalf("duplicate register: status %d body %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("response leaks password: %s", w.Body.String())
	}

	w = s.doJSON(http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@test.com", "password": "nope!!"})
	if w.Code != http.StatusBadRequest || errorKind(t, w) != "invalid_login" {
		t.Fatalf("bad login: status %d body %s", w.Code, w.Body.String())
	}

	token := s.login("ann@test.com", "secret1")
	w = s.do(http.MethodGet, "/profile", token, nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ann@test.com") {
		t.Fatalf("profile: status %d body %s", w.Code, w.Body.String())
	}
}

func TestAuthenticationErrors(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name   string
		header string
		kind   string
	}{
		{"missing", "", "unauthenticated"},
		{"garbage", "Bearer not-a-token", "invalid_credential"},
		{"wrong scheme", "Basic abc", "invalid_credential"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/assets", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			s.engine.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized || errorKind(t, w) != tc.kind {
				t.Fatalf("status %d body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUploadListGetDelete(t *testing.T) {
	s := newTestServer(t)
	s.register("Ann", "ann@test.com")
	token := s.login("ann@test.com", "secret1")

	w := s.upload(token, uploadForm{filename: "notes.txt", contentType: "text/plain", data: []byte("hello")})
	if w.Code != http.StatusBadRequest || errorKind(t, w) != "validation_error" {
		t.Fatalf("text upload: status %d body %s", w.Code, w.Body.String())
	}
	if s.store.Len() != 0 {
		t.Fatalf("rejected upload reached the store")
	}

	w = s.upload(token, uploadForm{
		filename:    "photo.jpg",
		contentType: "image/jpeg",
		data:        []byte("0123456789"),
		tags:        `["a","b","c"]`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", w.Code, w.Body.String())
	}
	var uploaded assetBody
	decode(t, w, &uploaded)
	if uploaded.Size != 10 || uploaded.MimeType != "image/jpeg" || strings.Join(uploaded.Tags, ",") != "a,b,c" {
		t.Errorf("unexpected asset %+v", uploaded)
	}
	if uploaded.Permissions.Public {
		t.Errorf("asset should default to private")
	}

	w = s.do(http.MethodGet, "/assets", token, nil, "")
	var listed []assetBody
	decode(t, w, &listed)
	if len(listed) != 1 || listed[0].ID != uploaded.ID {
		t.Fatalf("list = %+v", listed)
	}

	w = s.do(http.MethodGet, "/assets/photo.jpg", token, nil, "")
	var got assetBody
	decode(t, w, &got)
	if w.Code != http.StatusOK || !strings.HasPrefix(got.DownloadURL, got.Locator+"?") {
		t.Fatalf("get: status %d body %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/assets/stats", token, nil, "")
	var totals struct {
		TotalFiles   int64 `json:"total_files"`
		TotalSize    int64 `json:"total_size"`
		PrivateFiles int64 `json:"private_files"`
	}
	decode(t, w, &totals)
	if totals.TotalFiles != 1 || totals.TotalSize != 10 || totals.PrivateFiles != 1 {
		t.Errorf("stats = %+v", totals)
	}

	w = s.do(http.MethodDelete, "/assets/photo.jpg", token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", w.Code, w.Body.String())
	}
	if s.store.Len() != 0 {
		t.Errorf("object not removed from store")
	}
	w = s.do(http.MethodDelete, "/assets/photo.jpg", token, nil, "")
	if w.Code != http.StatusNotFound || errorKind(t, w) != "not_found" {
		t.Fatalf("second delete: status %d body %s", w.Code, w.Body.String())
	}
}

func TestUploadPublicAndOversized(t *testing.T) {
	s := newTestServer(t)
	s.register("Ann", "ann@test.com")
	token := s.login("ann@test.com", "secret1")

	w := s.upload(token, uploadForm{filename: "doc.pdf", contentType: "application/pdf", data: []byte("%PDF"), permissions: "public"})
	if w.Code != http.StatusOK {
		t.Fatalf("public upload: status %d body %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodGet, "/assets/doc.pdf", token, nil, "")
	var got assetBody
	decode(t, w, &got)
	if got.DownloadURL != got.Locator {
		t.Errorf("public asset should be served from its locator, got %q", got.DownloadURL)
	}
	if !strings.Contains(got.Locator, "/test-bucket/public/") {
		t.Errorf("public asset stored outside the public prefix: %q", got.Locator)
	}

	w = s.upload(token, uploadForm{filename: "stats", contentType: "image/png", data: []byte("png!")})
	if w.Code != http.StatusBadRequest || errorKind(t, w) != "validation_error" {
		t.Fatalf("reserved filename: status %d body %s", w.Code, w.Body.String())
	}

	w = s.upload(token, uploadForm{filename: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, testMaxBytes+1)})
	if w.Code != http.StatusBadRequest || errorKind(t, w) != "validation_error" {
		t.Fatalf("oversized upload: status %d body %s", w.Code, w.Body.String())
	}

	w = s.upload(token, uploadForm{filename: "huge.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, 128<<10)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("body over the request limit: status %d body %s", w.Code, w.Body.String())
	}
	if s.store.Len() != 1 {
		t.Errorf("store holds %d objects, want 1", s.store.Len())
	}
}

func TestOwnerIsolationAndAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	s.register("Ann", "ann@test.com")
	s.register("Bob", "bob@test.com")
	ann := s.login("ann@test.com", "secret1")
	bob := s.login("bob@test.com", "secret1")
	admin := s.login("admin@test.com", "adminpass")

	if w := s.upload(ann, uploadForm{filename: "a.png", contentType: "image/png", data: []byte("png!")}); w.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", w.Code, w.Body.String())
	}

	if w := s.do(http.MethodDelete, "/assets/a.png", bob, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: status %d body %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodGet, "/assets/a.png", bob, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign get: status %d body %s", w.Code, w.Body.String())
	}

	for _, path := range []string{"/admin/users", "/admin/assets", "/admin/stats/users", "/admin/stats/visibility"} {
		w := s.do(http.MethodGet, path, bob, nil, "")
		if w.Code != http.StatusForbidden || errorKind(t, w) != "forbidden" {
			t.Errorf("%s as user: status %d body %s", path, w.Code, w.Body.String())
		}
	}

	w := s.do(http.MethodGet, "/admin/stats/users", admin, nil, "")
	var users struct {
		TotalUsers int64 `json:"total_users"`
	}
	decode(t, w, &users)
	if users.TotalUsers != 3 {
		t.Errorf("total users = %d", users.TotalUsers)
	}

	w = s.do(http.MethodGet, "/admin/stats/storage", admin, nil, "")
	var usage []struct {
		Email     string `json:"email"`
		TotalSize int64  `json:"total_size"`
	}
	decode(t, w, &usage)
	if len(usage) != 3 || usage[0].Email != "ann@test.com" || usage[0].TotalSize != 4 {
		t.Errorf("storage = %+v", usage)
	}

	w = s.do(http.MethodGet, "/admin/stats/visibility", admin, nil, "")
	var vis struct {
		PublicFiles  int64 `json:"public_files"`
		PrivateFiles int64 `json:"private_files"`
	}
	decode(t, w, &vis)
	if vis.PublicFiles != 0 || vis.PrivateFiles != 1 {
		t.Errorf("visibility = %+v", vis)
	}

	if w := s.do(http.MethodDelete, "/admin/assets/a.png", admin, nil, ""); w.Code != http.StatusOK {
		t.Fatalf("admin delete: status %d body %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodGet, "/admin/stats/assets", admin, nil, "")
	var count struct {
		TotalAssets int64 `json:"total_assets"`
	}
	decode(t, w, &count)
	if count.TotalAssets != 0 {
		t.Errorf("total assets = %d", count.TotalAssets)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(http.MethodGet, "/healthz", "", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d body %s", w.Code, w.Body.String())
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/healthz", handler.Health(map[string]handler.Pinger{
		"redis": func(ctx context.Context) error { return errors.New("dial tcp redis.internal:6379: connection refused") },
	}))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("failing check: status %d body %s", w.Code, w.Body.String())
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	decode(t, w, &body)
	if body.Checks["redis"] != "down" {
		t.Errorf("redis check = %q", body.Checks["redis"])
	}
	if strings.Contains(w.Body.String(), "redis.internal") {
		t.Errorf("health response leaks dependency details: %s", w.Body.String())
	}
}
