package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// CartService owns per-user carts and turns them into checkout requests.
type CartService struct {
	carts    *store.Collection[Cart]
	requests *RequestService
	nowFunc  func() time.Time
}

// NewCartService returns a CartService.
func NewCartService(carts *store.Collection[Cart], requests *RequestService) *CartService {
	return &CartService{
		carts:    carts,
		requests: requests,
		nowFunc:  time.Now,
	}
}

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	Cart    Cart
	Request Request
}

var (
	// errNoCart aborts an Update without writing when the user has no cart.
	errNoCart = errors.New("no cart for user")
	// errUnchanged aborts an Update whose result equals the stored state.
	errUnchanged = errors.New("cart unchanged")
)

// AddOrUpdateItem adds book to the user's cart, creating the cart on first
// use. A book already on the cart has its quantity incremented. Any addition
// returns the cart to active.
func (s *CartService) AddOrUpdateItem(ctx context.Context, userID ID, book Book) (Cart, error) {
	if userID == "" || book.ID == "" {
		return Cart{}, fmt.Errorf("%w: userId and book.id are required", ErrValidation)
	}

	var out Cart
	err := s.carts.Update(ctx, func(cs []Cart) ([]Cart, error) {
		now := s.nowFunc().UTC()
		i := indexOfCart(cs, userID)
		if i < 0 {
			cs = append(cs, Cart{
				UserID:    userID,
				Items:     []Item{newItem(book)},
				Status:    StatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			})
			out = cs[len(cs)-1]
			return cs, nil
		}

		cart := &cs[i]
		if j := cart.indexOf(book.ID); j >= 0 {
			cart.Items[j].Quantity++
		} else {
			cart.Items = append(cart.Items, newItem(book))
		}
		cart.Status = StatusActive
		cart.UpdatedAt = now
		out = *cart
		return cs, nil
	})
	if err != nil {
		return Cart{}, err
	}
	out.Items = cloneItems(out.Items)
	return out, nil
}

// Get returns the user's cart, or an empty cart if they have none. A cart
// awaiting or past admin review shows the decisions of its latest request.
func (s *CartService) Get(ctx context.Context, userID ID) (Cart, error) {
	cs, err := s.carts.All(ctx)
	if err != nil {
		return Cart{}, err
	}
	i := indexOfCart(cs, userID)
	if i < 0 {
		return Cart{UserID: userID, Items: []Item{}, Status: StatusEmpty}, nil
	}
	cart := cs[i]
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	if !needsProjection(cart) {
		return cart, nil
	}

	requests, err := s.requests.List(ctx)
	if err != nil {
		return Cart{}, err
	}
	if req, ok := latestRequestFor(requests, userID); ok {
		cart = project(cart, req)
	}
	return cart, nil
}

// RemoveItem drops a book from an active cart. A cart left without items
// becomes empty. Removing a book that is not on the cart returns it as is.
func (s *CartService) RemoveItem(ctx context.Context, userID, bookID ID) (Cart, error) {
	var out Cart
	err := s.carts.Update(ctx, func(cs []Cart) ([]Cart, error) {
		i := indexOfCart(cs, userID)
		if i < 0 {
			return nil, fmt.Errorf("%w: cart for user %s", ErrNotFound, userID)
		}
		cart := &cs[i]
		if cart.Status != StatusActive {
			return nil, fmt.Errorf("%w: cart is %s, items can only be removed while active", ErrInvalidState, cart.Status)
		}
		out = *cart
		j := cart.indexOf(bookID)
		if j < 0 {
			return nil, errUnchanged
		}
		cart.Items = append(cart.Items[:j], cart.Items[j+1:]...)
		if len(cart.Items) == 0 {
			cart.Status = StatusEmpty
		}
		cart.UpdatedAt = s.nowFunc().UTC()
		out = *cart
		return cs, nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return Cart{}, err
	}
	out.Items = cloneItems(out.Items)
	if out.Items == nil {
		out.Items = []Item{}
	}
	return out, nil
}

// Checkout snapshots the cart into a new pending request. The cart keeps its
// items, reset to pending, so the patron can follow the decisions. A cart
// whose request is still awaiting review cannot be checked out again; a
// decided cart can.
func (s *CartService) Checkout(ctx context.Context, userID ID, registrationNumber string) (CheckoutResult, error) {
	var res CheckoutResult
	err := s.carts.Update(ctx, func(cs []Cart) ([]Cart, error) {
		i := indexOfCart(cs, userID)
		switch {
		case i < 0:
			return nil, fmt.Errorf("%w: cart not found", ErrValidation)
		case len(cs[i].Items) == 0:
			return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
		case registrationNumber == "":
			return nil, fmt.Errorf("%w: registration number is required", ErrValidation)
		case cs[i].Status == StatusPending:
			return nil, fmt.Errorf("%w: cart already has a request awaiting review", ErrInvalidState)
		}

		cart := &cs[i]
		snapshot := make([]Item, len(cart.Items))
		for j, it := range cart.Items {
			it.Status = StatusPending
			it.AdminNote = ""
			it.ProcessedAt = time.Time{}
			snapshot[j] = it
		}

		req, err := s.requests.Create(ctx, cart.UserID, registrationNumber, snapshot)
		if err != nil {
			return nil, err
		}

		cart.Items = snapshot
		cart.Status = StatusPending
		cart.RegistrationNumber = registrationNumber
		cart.UpdatedAt = req.CreatedAt
		res = CheckoutResult{Cart: *cart, Request: req}
		return cs, nil
	})
	if err != nil {
		if res.Request.ID != "" {
			log.WithFields(log.Fields{
				"userId":    userID,
				"requestId": res.Request.ID,
				"err":       err,
			}).Error("checkout request stored but cart update failed")
		}
		return CheckoutResult{}, err
	}
	res.Cart.Items = cloneItems(res.Cart.Items)
	return res, nil
}

// SyncFromRequest copies a request's decisions onto its owner's cart. It
// reports false without writing when the user has no cart.
//
// The stored request is re-read while the carts lock is held, so syncs racing
// for the same cart cannot leave it behind an older decision.
func (s *CartService) SyncFromRequest(ctx context.Context, req Request) (bool, error) {
	err := s.carts.Update(ctx, func(cs []Cart) ([]Cart, error) {
		i := indexOfCart(cs, req.UserID)
		if i < 0 {
			return nil, errNoCart
		}
		if cur, ok, err := s.requests.latest(ctx, req.ID); err != nil {
			return nil, err
		} else if ok {
			req = cur
		}
		cart := &cs[i]
		for j := range cart.Items {
			if k := req.indexOf(cart.Items[j].BookID); k >= 0 {
				cart.Items[j].Status = req.Books[k].Status
				cart.Items[j].AdminNote = req.Books[k].AdminNote
				cart.Items[j].ProcessedAt = req.Books[k].ProcessedAt
			}
		}
		cart.Status = req.Status
		cart.UpdatedAt = s.nowFunc().UTC()
		return cs, nil
	})
	if errors.Is(err, errNoCart) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func newItem(b Book) Item {
	return Item{
		BookID:   b.ID,
		Title:    b.Title,
		Author:   b.Author,
		ISBN:     b.ISBN,
		Quantity: 1,
		Status:   StatusPending,
	}
}

func indexOfCart(cs []Cart, userID ID) int {
	for i := range cs {
		if cs[i].UserID == userID {
			return i
		}
	}
	return -1
}
