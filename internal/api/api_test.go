package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"

	"github.com/skillsenselab/shelfmark/internal/api"
	"github.com/skillsenselab/shelfmark/internal/auth"
	"github.com/skillsenselab/shelfmark/internal/book"
	"github.com/skillsenselab/shelfmark/internal/catalog"
	"github.com/skillsenselab/shelfmark/internal/database"
	"github.com/skillsenselab/shelfmark/internal/logger"
	"github.com/skillsenselab/shelfmark/internal/model"
	"github.com/skillsenselab/shelfmark/internal/user"
)

func newTestServer(t *testing.T, catalogURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	log := logger.NewDefault("test")
	db, err := database.OpenDialector(context.Background(), sqlite.Open(dsn), database.Config{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxRetries:   1,
		LogLevel:     "silent",
	}, log)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	authCfg := auth.Config{
		JWTSecret:         "api-test-secret",
		BcryptCost:        4,
		MinPasswordLength: 6,
	}
	tokens, err := auth.NewTokenService(authCfg)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	server := api.New(api.Config{}, log)
	api.RegisterRoutes(server.Engine(), api.Dependencies{
		DB:      db,
		Users:   user.NewRepository(db),
		Books:   book.NewRepository(db),
		Hasher:  auth.NewHasher(authCfg),
		Tokens:  tokens,
		Catalog: catalog.NewClient(catalog.Config{BaseURL: catalogURL}),
		Auth:    authCfg,
		Log:     log,
	})
	return server.Engine()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not a JSON object: %v\n%s", err, rr.Body.String())
	}
	return m
}

// TestFullScenario walks the whole client flow: register, failed and
// successful login, empty list, idempotent save, comment update, delete.
func TestFullScenario(t *testing.T) {
	r := newTestServer(t, "")

	// Register.
	rr := doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "secret1") || strings.Contains(rr.Body.String(), "passwordHash") {
		t.Fatal("register response leaked password material")
	}

	// Wrong password.
	rr = doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rr.Code)
	}

	// Unknown email answers identically.
	rr = doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "secret1",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", rr.Code)
	}

	// Correct login.
	rr = doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	token, _ := decode(t, rr)["token"].(string)
	if token == "" {
		t.Fatal("login response missing token")
	}

	// Empty favorites list.
	rr = doJSON(t, r, "GET", "/api/libros", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected an empty list, got %s", body)
	}

	// Save a book.
	saveBody := gin.H{
		"googleBookId": "abc123",
		"titulo":       "Dune",
		"autores":      "Frank Herbert",
		"imagenUrl":    "https://books.example.com/dune.jpg",
		"comentario":   "to read",
	}
	rr = doJSON(t, r, "POST", "/api/libros", token, saveBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("save: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	first := decode(t, rr)["book"].(map[string]any)
	bookID, _ := first["id"].(string)
	if bookID == "" {
		t.Fatal("save response missing book id")
	}

	// Saving the same book again is idempotent.
	rr = doJSON(t, r, "POST", "/api/libros", token, saveBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("duplicate save: expected 200, got %d", rr.Code)
	}
	second := decode(t, rr)["book"].(map[string]any)
	if second["id"] != bookID {
		t.Fatalf("duplicate save returned a different row: %v vs %s", second["id"], bookID)
	}

	// Update the comment.
	rr = doJSON(t, r, "PUT", "/api/libros/"+bookID, token, gin.H{"comentario": "favorite novel"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := decode(t, rr)["comentario"]; got != "favorite novel" {
		t.Fatalf("comment not updated: %v", got)
	}

	// Delete it.
	rr = doJSON(t, r, "DELETE", "/api/libros/"+bookID, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, r, "GET", "/api/libros", token, nil)
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected an empty list after delete, got %s", body)
	}
}

func TestRegister_Validation(t *testing.T) {
	r := newTestServer(t, "")

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing email", gin.H{"password": "secret1"}},
		{"invalid email", gin.H{"email": "not-an-email", "password": "secret1"}},
		{"missing password", gin.H{"email": "a@example.com"}},
		{"short password", gin.H{"email": "a@example.com", "password": "abc"}},
	}
	for _, tc := range cases {
		rr := doJSON(t, r, "POST", "/api/auth/register", "", tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rr.Code)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r := newTestServer(t, "")
	body := gin.H{"email": "alice@example.com", "password": "secret1"}

	if rr := doJSON(t, r, "POST", "/api/auth/register", "", body); rr.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rr.Code)
	}
	if rr := doJSON(t, r, "POST", "/api/auth/register", "", body); rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", rr.Code)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	r := newTestServer(t, "")

	for _, path := range []string{"/api/libros", "/api/auth/profile"} {
		rr := doJSON(t, r, "GET", path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: expected 401, got %d", path, rr.Code)
		}
	}

	rr := doJSON(t, r, "GET", "/api/libros", "bogus-token", nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("bogus token: expected 403, got %d", rr.Code)
	}
}

func TestProfile(t *testing.T) {
	r := newTestServer(t, "")

	doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	rr := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	token, _ := decode(t, rr)["token"].(string)

	rr = doJSON(t, r, "GET", "/api/auth/profile", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", rr.Code)
	}
	profile := decode(t, rr)
	if profile["email"] != "alice@example.com" {
		t.Errorf("profile email mismatch: %v", profile["email"])
	}
	if _, leaked := profile["passwordHash"]; leaked {
		t.Error("profile leaked the password hash")
	}
}

func TestSaveBook_Validation(t *testing.T) {
	r := newTestServer(t, "")

	doJSON(t, r, "POST", "/api/auth/register", "", gin.H{"email": "alice@example.com", "password": "secret1"})
	rr := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "secret1"})
	token, _ := decode(t, rr)["token"].(string)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing id", gin.H{"titulo": "Dune"}},
		{"missing title", gin.H{"googleBookId": "abc123"}},
		{"malformed id", gin.H{"googleBookId": "not a book id!", "titulo": "Dune"}},
	}
	for _, tc := range cases {
		if rr := doJSON(t, r, "POST", "/api/libros", token, tc.body); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rr.Code)
		}
	}
}

func TestBookMutations_OtherUsersRowLooksAbsent(t *testing.T) {
	r := newTestServer(t, "")

	register := func(email string) string {
		doJSON(t, r, "POST", "/api/auth/register", "", gin.H{"email": email, "password": "secret1"})
		rr := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{"email": email, "password": "secret1"})
		token, _ := decode(t, rr)["token"].(string)
		if token == "" {
			t.Fatalf("no token for %s", email)
		}
		return token
	}
	aliceToken := register("alice@example.com")
	bobToken := register("bob@example.com")

	rr := doJSON(t, r, "POST", "/api/libros", aliceToken, gin.H{
		"googleBookId": "abc123", "titulo": "Dune",
	})
	bookID := decode(t, rr)["book"].(map[string]any)["id"].(string)

	if rr := doJSON(t, r, "PUT", "/api/libros/"+bookID, bobToken, gin.H{"comentario": "x"}); rr.Code != http.StatusNotFound {
		t.Errorf("non-owner update: expected 404, got %d", rr.Code)
	}
	if rr := doJSON(t, r, "DELETE", "/api/libros/"+bookID, bobToken, nil); rr.Code != http.StatusNotFound {
		t.Errorf("non-owner delete: expected 404, got %d", rr.Code)
	}

	// Alice still sees her book.
	rr = doJSON(t, r, "GET", "/api/libros", aliceToken, nil)
	var books []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &books); err != nil || len(books) != 1 {
		t.Fatalf("expected alice to keep 1 book, got %s", rr.Body.String())
	}
}

func TestSearch_Passthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if got := req.URL.Query().Get("q"); got != "dune" {
			t.Errorf("upstream received query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"id":"abc123","volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"description":"Desert planet.","imageLinks":{"thumbnail":"https://img.example.com/t.jpg"}}}]}`)
	}))
	defer upstream.Close()

	r := newTestServer(t, upstream.URL)

	doJSON(t, r, "POST", "/api/auth/register", "", gin.H{"email": "alice@example.com", "password": "secret1"})
	rr := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "secret1"})
	token, _ := decode(t, rr)["token"].(string)

	rr = doJSON(t, r, "GET", "/api/books/search?q=dune", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var results []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil || len(results) != 1 {
		t.Fatalf("unexpected search payload: %s", rr.Body.String())
	}
	if results[0]["titulo"] != "Dune" {
		t.Errorf("unexpected title: %v", results[0]["titulo"])
	}

	if rr := doJSON(t, r, "GET", "/api/books/search", token, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("missing q: expected 400, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, "")

	rr := doJSON(t, r, "GET", "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rr.Code)
	}
	if decode(t, rr)["database"] != "up" {
		t.Errorf("expected database up, got %s", rr.Body.String())
	}
}
