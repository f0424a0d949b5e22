package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/imrishuroy/go-library-checkout/internal/store"
)

type fixture struct {
	fs       afero.Fs
	carts    *store.Collection[Cart]
	requests *store.Collection[Request]
	reqSvc   *RequestService
	cartSvc  *CartService
	engine   *Engine
}

// fakeClock hands out strictly increasing instants.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	backend := store.NewFileStore(fs, "/data")
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	f := &fixture{
		fs:       fs,
		carts:    store.NewCollection[Cart](backend, CartsCollection),
		requests: store.NewCollection[Request](backend, RequestsCollection),
	}
	f.reqSvc = NewRequestService(f.requests)
	f.reqSvc.nowFunc = clock.Now
	f.cartSvc = NewCartService(f.carts, f.reqSvc)
	f.cartSvc.nowFunc = clock.Now
	f.engine = NewEngine(f.requests, f.cartSvc)
	f.engine.nowFunc = clock.Now
	return f
}

func (f *fixture) mustAdd(t *testing.T, userID ID, bookIDs ...ID) Cart {
	t.Helper()
	var c Cart
	var err error
	for _, id := range bookIDs {
		c, err = f.cartSvc.AddOrUpdateItem(context.Background(), userID, Book{ID: id, Title: "Title " + string(id)})
		if err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	return c
}

func (f *fixture) mustCheckout(t *testing.T, userID ID, reg string) CheckoutResult {
	t.Helper()
	res, err := f.cartSvc.Checkout(context.Background(), userID, reg)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return res
}

func (f *fixture) storedCart(t *testing.T, userID ID) Cart {
	t.Helper()
	cs, err := f.carts.All(context.Background())
	if err != nil {
		t.Fatalf("load carts: %v", err)
	}
	if i := indexOfCart(cs, userID); i >= 0 {
		return cs[i]
	}
	t.Fatalf("no stored cart for %s", userID)
	return Cart{}
}

func (f *fixture) storedRequests(t *testing.T) []Request {
	t.Helper()
	rs, err := f.requests.All(context.Background())
	if err != nil {
		t.Fatalf("load requests: %v", err)
	}
	return rs
}

func fixedTime(sec int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, sec, 0, time.UTC)
}
