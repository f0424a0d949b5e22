package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/imrishuroy/go-library-checkout/internal/catalog"
	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/idempotency"
	"github.com/imrishuroy/go-library-checkout/internal/notifications"
	"github.com/imrishuroy/go-library-checkout/internal/store"
)

func newServices(backend store.Store) Services {
	requestsCol := store.NewCollection[checkout.Request](backend, checkout.RequestsCollection)
	requests := checkout.NewRequestService(requestsCol)
	carts := checkout.NewCartService(store.NewCollection[checkout.Cart](backend, checkout.CartsCollection), requests)
	notes := notifications.NewService(store.NewCollection[notifications.Notification](backend, notifications.CollectionName))
	engine := checkout.NewEngine(requestsCol, carts)
	engine.Notifier = notifications.DirectNotifier{Service: notes}

	return Services{
		Carts:         carts,
		Requests:      requests,
		Engine:        engine,
		Catalog:       catalog.NewService(store.NewCollection[catalog.Book](backend, catalog.CollectionName)),
		Notifications: notes,
		Idempotency: idempotency.NewCollectionStore(
			store.NewCollection[idempotency.Record](backend, idempotency.CollectionName), time.Hour),
	}
}

func setupRouter(backend store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newServices(backend))
	return r
}

func newRouter() *gin.Engine {
	return setupRouter(store.NewFileStore(afero.NewMemMapFs(), "/data"))
}

func do(r *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func addToCart(t *testing.T, r *gin.Engine, userID any, bookID string) {
	t.Helper()
	w := do(r, http.MethodPost, "/api/cart", map[string]any{"userId": userID, "book": map[string]any{"id": bookID, "title": "Book " + bookID}})
	if w.Code != http.StatusOK {
		t.Fatalf("add to cart: %d %s", w.Code, w.Body.String())
	}
}

type checkoutBody struct {
	Message string           `json:"message"`
	Cart    checkout.Cart    `json:"cart"`
	Request checkout.Request `json:"request"`
}

type decisionResponse struct {
	Message    string           `json:"message"`
	Request    checkout.Request `json:"request"`
	CartSynced bool             `json:"cartSynced"`
	SyncError  string           `json:"syncError"`
}

func TestCheckoutAndApproveFlow(t *testing.T) {
	r := newRouter()

	addToCart(t, r, 42, "b1")
	addToCart(t, r, 42, "b1")

	w := do(r, http.MethodGet, "/api/cart/42", nil)
	cart := decode[checkout.Cart](t, w)
	if cart.Status != checkout.StatusActive || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	w = do(r, http.MethodPost, "/api/cart/42/checkout", map[string]string{"registrationNumber": "R100"})
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: %d %s", w.Code, w.Body.String())
	}
	co := decode[checkoutBody](t, w)
	if co.Request.ID == "" || co.Cart.Status != checkout.StatusPending {
		t.Fatalf("unexpected checkout response: %+v", co)
	}

	w = do(r, http.MethodPut, "/api/requests/"+string(co.Request.ID)+"/books/b1/approve", map[string]string{"adminNotes": "ok"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", w.Code, w.Body.String())
	}
	d := decode[decisionResponse](t, w)
	if d.Request.Status != checkout.StatusApproved || !d.CartSynced || d.SyncError != "" {
		t.Fatalf("unexpected decision: %+v", d)
	}

	cart = decode[checkout.Cart](t, do(r, http.MethodGet, "/api/cart/42", nil))
	if cart.Items[0].Status != checkout.StatusApproved || cart.Items[0].AdminNote != "ok" {
		t.Fatalf("cart not synced: %+v", cart.Items[0])
	}

	rs := decode[[]checkout.Request](t, do(r, http.MethodGet, "/api/requests/user/42", nil))
	if len(rs) != 1 || rs[0].ID != co.Request.ID {
		t.Fatalf("unexpected user requests: %+v", rs)
	}

	// The decision produced a notification for the patron.
	notes := decode[struct {
		Notifications []notifications.Notification `json:"notifications"`
	}](t, do(r, http.MethodGet, "/api/notifications", nil))
	if len(notes.Notifications) != 1 || notes.Notifications[0].UserID != "42" {
		t.Fatalf("expected a decision notification, got %+v", notes.Notifications)
	}
}

func TestErrorMapping(t *testing.T) {
	r := newRouter()

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"checkout without cart", http.MethodPost, "/api/cart/7/checkout", map[string]string{"registrationNumber": "R1"}, http.StatusBadRequest, "validation_error"},
		{"remove from missing cart", http.MethodDelete, "/api/cart/7/items/b1", nil, http.StatusNotFound, "not_found"},
		{"approve unknown request", http.MethodPut, "/api/requests/nope/approve", nil, http.StatusNotFound, "not_found"},
		{"missing registration number", http.MethodPost, "/api/cart/7/checkout", map[string]string{}, http.StatusBadRequest, "validation_failed"},
		{"add without book id", http.MethodPost, "/api/cart", map[string]any{"userId": "7", "book": map[string]string{}}, http.StatusBadRequest, "validation_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.method, tc.path, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			if got := decode[map[string]any](t, w)["error"]; got != tc.code {
				t.Fatalf("error = %v, want %s", got, tc.code)
			}
		})
	}
}

func TestRemoveFromPendingCartConflicts(t *testing.T) {
	r := newRouter()
	addToCart(t, r, "42", "b1")
	do(r, http.MethodPost, "/api/cart/42/checkout", map[string]string{"registrationNumber": "R100"})

	w := do(r, http.MethodDelete, "/api/cart/42/items/b1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}
}

func TestCheckout_IdempotencyKeyReplays(t *testing.T) {
	r := newRouter()
	addToCart(t, r, "42", "b1")

	first := do(r, http.MethodPost, "/api/cart/42/checkout", map[string]string{"registrationNumber": "R100"}, "Idempotency-Key", "abc")
	second := do(r, http.MethodPost, "/api/cart/42/checkout", map[string]string{"registrationNumber": "R100"}, "Idempotency-Key", "abc")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses %d / %d: %s", first.Code, second.Code, second.Body.String())
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("retry must replay the stored response:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	rs := decode[[]checkout.Request](t, do(r, http.MethodGet, "/api/requests", nil))
	if len(rs) != 1 {
		t.Fatalf("expected one request, got %d", len(rs))
	}

	// Without the key the second checkout is refused by the cart state.
	w := do(r, http.MethodPost, "/api/cart/42/checkout", map[string]string{"registrationNumber": "R100"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestCheckout_FailedAttemptCanBeRetried(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/cart/42/checkout", map[string]string{"registrationNumber": "R100"}, "Idempotency-Key", "k")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing cart, got %d", w.Code)
	}

	addToCart(t, r, "42", "b1")
	w = do(r, http.MethodPost, "/api/cart/42/checkout", map[string]string{"registrationNumber": "R100"}, "Idempotency-Key", "k")
	if w.Code != http.StatusOK {
		t.Fatalf("retry after failure: %d %s", w.Code, w.Body.String())
	}
}

func TestCatalogRoutes(t *testing.T) {
	r := newRouter()
	book := map[string]any{
		"title": "Dune", "author": "Herbert", "isbn": "9780441013593",
		"section": "Fiction", "quantity": 2, "dateAdded": "2024-03-01",
	}

	w := do(r, http.MethodPost, "/api/admin/books", book)
	if w.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/api/admin/books", book); w.Code != http.StatusConflict {
		t.Fatalf("duplicate isbn: expected 409, got %d", w.Code)
	}

	w = do(r, http.MethodPut, "/api/admin/books/1", map[string]any{"quantity": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPut, "/api/admin/books/1", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty patch: expected 400, got %d", w.Code)
	}

	all := decode[struct {
		Message []catalog.Book `json:"message"`
	}](t, do(r, http.MethodGet, "/api/books/all", nil))
	if len(all.Message) != 1 || all.Message[0].Quantity != 5 {
		t.Fatalf("unexpected catalog: %+v", all.Message)
	}

	// A bare cart reference is completed from the catalog.
	addToCart(t, r, "42", "1")
	cart := decode[checkout.Cart](t, do(r, http.MethodGet, "/api/cart/42", nil))
	if cart.Items[0].Title != "Book 1" {
		t.Fatalf("explicit titles are kept, got %q", cart.Items[0].Title)
	}
	w = do(r, http.MethodPost, "/api/cart", map[string]any{"userId": "43", "book": map[string]any{"id": 1}})
	if w.Code != http.StatusOK {
		t.Fatalf("add bare reference: %d", w.Code)
	}
	if c := decode[checkout.Cart](t, w); c.Items[0].Title != "Dune" || c.Items[0].ISBN != "9780441013593" {
		t.Fatalf("catalog details not filled in: %+v", c.Items[0])
	}

	if w := do(r, http.MethodDelete, "/api/admin/books/1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/books/1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", w.Code)
	}
}

func TestNotificationRoutes(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/api/notifications", map[string]any{"userId": 5, "message": "Library closes early"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	created := decode[struct {
		Notification notifications.Notification `json:"notification"`
	}](t, w)

	w = do(r, http.MethodPut, "/api/notifications/"+string(created.Notification.ID)+"/read", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read: %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/api/notifications/missing/read", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/notifications", map[string]any{"userId": 5}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing message: expected 400, got %d", w.Code)
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Save(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func TestStorageFailureIs500(t *testing.T) {
	r := setupRouter(brokenStore{})

	w := do(r, http.MethodGet, "/api/requests", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := decode[map[string]any](t, w)["error"]; got != "storage_error" {
		t.Fatalf("error = %v, want storage_error", got)
	}
}
