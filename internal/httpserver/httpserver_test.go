package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/media"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

var testSecret = []byte("test-jwt-secret")

type recorder struct {
	mu     sync.Mutex
	topics []string
	types  []any
}

func (r *recorder) PublishEvent(_ context.Context, topic, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.types = append(r.types, event.(map[string]any)["type"])
	return nil
}

func (r *recorder) Close() error { return nil }

type fakeImages struct {
	err error
}

func (f fakeImages) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	if err := media.CheckFormat(filename); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, r)
	return "https://img.example/products/" + filename, nil
}

type testEnv struct {
	E      *echo.Echo
	Store  *repo.GormRepo
	Events *recorder
	Deps   *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := repo.OpenGorm(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	rec := &recorder{}
	deps := &Deps{
		CatalogHandler:    &CatalogHTTP{Svc: &service.CatalogService{Repo: store, Events: rec}},
		AuthHandler:       &AuthHTTP{Svc: &service.AuthService{Repo: store, Tokens: tokens.NewIssuer(testSecret, 0), Events: rec}},
		OrderHandler:      &OrderHTTP{Svc: &service.OrderService{Repo: store, Events: rec}},
		NewsletterHandler: &NewsletterHTTP{Svc: &service.NewsletterService{Repo: store, Events: rec}},
		UploadHandler:     &UploadHTTP{Svc: &service.UploadService{Images: fakeImages{}}},
		Store:             store,
		JWTSecret:         testSecret,
	}

	e := echo.New()
	Register(e, deps)
	return &testEnv{E: e, Store: store, Events: rec, Deps: deps}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func TestCreateProduct_ReturnsFieldsIdAndCreatedAt(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/items", map[string]any{
		"name": "Lamp", "description": "warm light", "price": 25.5, "category": "home", "image": "https://img/x.png",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	raw := decode[map[string]any](t, rec)
	assert.NotEmpty(t, raw["_id"])
	assert.NotEmpty(t, raw["createdAt"])
	assert.Equal(t, []any{}, raw["reviews"])

	p := decode[models.Product](t, rec)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, "warm light", p.Description)
	assert.Equal(t, 25.5, p.Price)
	assert.Equal(t, "home", p.Category)
	assert.Equal(t, "https://img/x.png", p.Image)
	assert.Contains(t, env.Events.types, "product_created")
}

func TestCreateProduct_DatesEmbeddedReviews(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/items", map[string]any{
		"name":    "Lamp",
		"reviews": []any{map[string]any{"user": "u", "rating": 5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[models.Product](t, rec)
	require.Len(t, p.Reviews, 1)
	assert.False(t, p.Reviews[0].Date.IsZero())

	stored := decode[models.Product](t, env.do(t, http.MethodGet, "/api/items/"+p.ID, nil))
	require.Len(t, stored.Reviews, 1)
	assert.False(t, stored.Reviews[0].Date.IsZero())
}

func TestListProducts_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := &models.Product{Name: "A", CreatedAt: now.Add(-time.Minute), Reviews: []models.Review{}}
	b := &models.Product{Name: "B", CreatedAt: now, Reviews: []models.Review{}}
	require.NoError(t, env.Store.CreateProduct(ctx, a))
	require.NoError(t, env.Store.CreateProduct(ctx, b))

	rec := env.do(t, http.MethodGet, "/api/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]models.Product](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	p := decode[models.Product](t, env.do(t, http.MethodPost, "/api/items", map[string]any{"name": "A"}))

	// handler called directly, the way route params arrive from echo
	req := httptest.NewRequest(http.MethodGet, "/api/items/"+p.ID, nil)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID)
	require.NoError(t, env.Deps.CatalogHandler.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, p.ID, decode[models.Product](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/api/items/00000000-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", message(t, rec))

	rec = env.do(t, http.MethodGet, "/api/items/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplaceProduct(t *testing.T) {
	env := newTestEnv(t)
	p := decode[models.Product](t, env.do(t, http.MethodPost, "/api/items", map[string]any{"name": "A", "category": "c"}))
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/items/"+p.ID+"/review", map[string]any{"user": "u", "rating": 5}).Code)

	rec := env.do(t, http.MethodPut, "/api/items/"+p.ID, map[string]any{"name": "A2", "price": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Product](t, rec)
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, 3.0, got.Price)
	assert.Empty(t, got.Category, "replace is wholesale")
	assert.Len(t, got.Reviews, 1, "reviews survive a body without them")

	rec = env.do(t, http.MethodPut, "/api/items/00000000-0000-4000-8000-000000000000", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct_AlwaysConfirms(t *testing.T) {
	env := newTestEnv(t)
	p := decode[models.Product](t, env.do(t, http.MethodPost, "/api/items", map[string]any{"name": "A"}))

	for range 2 {
		rec := env.do(t, http.MethodDelete, "/api/items/"+p.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Deleted", message(t, rec))
	}
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/items/"+p.ID, nil).Code)
}

func TestAddReview(t *testing.T) {
	env := newTestEnv(t)
	p := decode[models.Product](t, env.do(t, http.MethodPost, "/api/items", map[string]any{"name": "A"}))

	rec := env.do(t, http.MethodPost, "/api/items/"+p.ID+"/review", map[string]any{"user": "u", "rating": "4", "comment": "fine"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Review added!", message(t, rec))

	got := decode[models.Product](t, env.do(t, http.MethodGet, "/api/items/"+p.ID, nil))
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, 4.0, got.Reviews[0].Rating)
	assert.False(t, got.Reviews[0].Date.IsZero())

	rec = env.do(t, http.MethodPost, "/api/items/"+p.ID+"/review", map[string]any{"user": "u", "rating": "lots"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/items/"+p.ID+"/review", map[string]any{"user": "u"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/items/"+p.ID+"/review", map[string]any{"user": "w", "rating": ""})
	require.Equal(t, http.StatusCreated, rec.Code)
	got = decode[models.Product](t, env.do(t, http.MethodGet, "/api/items/"+p.ID, nil))
	require.Len(t, got.Reviews, 2)
	assert.Equal(t, 0.0, got.Reviews[1].Rating)
}

func TestAddReview_MissingProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/items/00000000-0000-4000-8000-000000000000/review", map[string]any{"user": "u", "rating": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", message(t, rec))

	items := decode[[]models.Product](t, env.do(t, http.MethodGet, "/api/items", nil))
	assert.Empty(t, items)
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/items", map[string]any{"name": "Green Mug", "category": "kitchen"})
	env.do(t, http.MethodPost, "/api/items", map[string]any{"name": "Desk"})

	rec := env.do(t, http.MethodGet, "/api/items/search?q=MUG", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hits := decode[[]models.Product](t, rec)
	require.Len(t, hits, 1)
	assert.Equal(t, "Green Mug", hits[0].Name)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/items/search", nil).Code)
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"name": "Ann", "email": "ann@x.com", "password": "pw"}

	rec := env.do(t, http.MethodPost, "/api/auth/signup", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User created successfully!", message(t, rec))

	stored, err := env.Store.FindUserByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", stored.PasswordHash)

	rec = env.do(t, http.MethodPost, "/api/auth/signup", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists!", message(t, rec))

	rec = env.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_LongPassword(t *testing.T) {
	env := newTestEnv(t)
	password := strings.Repeat("p", 80)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"name": "Ann", "email": "ann@x.com", "password": password})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User created successfully!", message(t, rec))

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@x.com", "password": password})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"name": "Ann", "email": "ann@x.com", "password": "pw"}).Code)

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@x.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials!", message(t, rec))

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ghost@x.com", "password": "pw"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found!", message(t, rec))

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	raw := decode[map[string]any](t, rec)
	user, ok := raw["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Ann", "email": "ann@x.com", "isAdmin": false}, user)

	stored, err := env.Store.FindUserByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	claims, err := tokens.ClaimsFromToken(raw["token"].(string), testSecret)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, stored.IsAdmin, claims.IsAdmin)
}

func TestSubscribe_TwiceConflicts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/subscribe", map[string]any{"email": "n@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Subscribed successfully!", message(t, rec))

	rec = env.do(t, http.MethodPost, "/api/subscribe", map[string]any{"email": "n@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already subscribed!", message(t, rec))
}

func TestOrders_CreateAndListByEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customerName": "A", "email": "a@x.com", "items": []any{}, "totalAmount": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Order](t, rec)
	assert.Equal(t, "Pending", created.Status)
	assert.False(t, created.OrderDate.IsZero())

	rec = env.do(t, http.MethodGet, "/api/user-orders/a@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]models.Order](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	all := decode[[]models.Order](t, env.do(t, http.MethodGet, "/api/orders", nil))
	assert.Len(t, all, 1)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/orders", `{"customerName":`).Code)
}

func TestOrders_PatchChangesOnlyStatus(t *testing.T) {
	env := newTestEnv(t)

	created := decode[models.Order](t, env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customerName": "A", "email": "a@x.com", "address": "1 Road", "phone": "555",
		"items": []any{map[string]any{"name": "Lamp", "qty": 1}}, "totalAmount": 10,
	}))

	rec := env.do(t, http.MethodPatch, "/api/orders/"+created.ID, map[string]any{"status": "Delivered", "totalAmount": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Order](t, rec)

	assert.Equal(t, "Delivered", updated.Status)
	assert.Equal(t, created.CustomerName, updated.CustomerName)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Address, updated.Address)
	assert.Equal(t, created.Phone, updated.Phone)
	assert.Equal(t, created.Items, updated.Items)
	assert.Equal(t, created.TotalAmount, updated.TotalAmount)
	assert.True(t, created.OrderDate.Equal(updated.OrderDate))

	rec = env.do(t, http.MethodPatch, "/api/orders/00000000-0000-4000-8000-000000000000", map[string]any{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrders_PatchAcceptsAnyStatus(t *testing.T) {
	env := newTestEnv(t)
	created := decode[models.Order](t, env.do(t, http.MethodPost, "/api/orders", map[string]any{"customerName": "A", "email": "a@x.com"}))

	rec := env.do(t, http.MethodPatch, "/api/orders/"+created.ID, map[string]any{"status": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode[models.Order](t, rec).Status)

	rec = env.do(t, http.MethodPatch, "/api/orders/"+created.ID, map[string]any{"status": "Returned to sender"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Returned to sender", decode[models.Order](t, rec).Status)

	rec = env.do(t, http.MethodPatch, "/api/orders/"+created.ID, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Returned to sender", decode[models.Order](t, rec).Status, "a body without status changes nothing")

	rec = env.do(t, http.MethodPatch, "/api/orders/not-an-id", map[string]any{"status": "Shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadRequest(t *testing.T, field, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, uploadRequest(t, "image", "lamp.png"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://img.example/products/lamp.png", decode[map[string]string](t, rec)["url"])

	rec = httptest.NewRecorder()
	env.E.ServeHTTP(rec, uploadRequest(t, "image", "lamp.svg"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	env.E.ServeHTTP(rec, uploadRequest(t, "file", "lamp.png"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.Deps.UploadHandler.Svc.Images = fakeImages{err: errors.New("host down")}
	rec = httptest.NewRecorder()
	env.E.ServeHTTP(rec, uploadRequest(t, "image", "lamp.jpg"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Image upload failed", message(t, rec))
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("down") }

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", nil).Code)

	env.Deps.Store = downStore{}
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/health/ready", nil).Code)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute_RendersMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, message(t, rec))
}
