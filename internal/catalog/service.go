package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/store"
)

// Service manages the book catalog.
type Service struct {
	books   *store.Collection[Book]
	nowFunc func() time.Time
}

// NewService returns a catalog Service over books.
func NewService(books *store.Collection[Book]) *Service {
	return &Service{books: books, nowFunc: time.Now}
}

// Add catalogues a new book and assigns it the next integer id.
func (s *Service) Add(ctx context.Context, b Book) (Book, error) {
	if err := validate(b); err != nil {
		return Book{}, err
	}

	err := s.books.Update(ctx, func(bs []Book) ([]Book, error) {
		if i := indexOfISBN(bs, b.ISBN); i >= 0 {
			return nil, fmt.Errorf("%w: a book with ISBN %s already exists", ErrConflict, b.ISBN)
		}
		now := s.nowFunc().UTC()
		b.ID = nextID(bs)
		b.CreatedAt, b.UpdatedAt = now, now
		return append(bs, b), nil
	})
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

// List returns the whole catalog in stored order.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.books.All(ctx)
}

// Get returns one book.
func (s *Service) Get(ctx context.Context, id checkout.ID) (Book, error) {
	bs, err := s.books.All(ctx)
	if err != nil {
		return Book{}, err
	}
	if i := indexOf(bs, id); i >= 0 {
		return bs[i], nil
	}
	return Book{}, fmt.Errorf("%w: book %s", checkout.ErrNotFound, id)
}

// Update applies p to the book with the given id.
func (s *Service) Update(ctx context.Context, id checkout.ID, p Patch) (Book, error) {
	var out Book
	err := s.books.Update(ctx, func(bs []Book) ([]Book, error) {
		i := indexOf(bs, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: book %s", checkout.ErrNotFound, id)
		}
		b := bs[i]
		p.apply(&b)
		if err := validate(b); err != nil {
			return nil, err
		}
		if j := indexOfISBN(bs, b.ISBN); j >= 0 && j != i {
			return nil, fmt.Errorf("%w: a book with ISBN %s already exists", ErrConflict, b.ISBN)
		}
		b.UpdatedAt = s.nowFunc().UTC()
		bs[i] = b
		out = b
		return bs, nil
	})
	if err != nil {
		return Book{}, err
	}
	return out, nil
}

// Delete removes a book from the catalog.
func (s *Service) Delete(ctx context.Context, id checkout.ID) error {
	return s.books.Update(ctx, func(bs []Book) ([]Book, error) {
		i := indexOf(bs, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: book %s", checkout.ErrNotFound, id)
		}
		return append(bs[:i], bs[i+1:]...), nil
	})
}

func (p Patch) apply(b *Book) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&b.Title, p.Title)
	set(&b.Author, p.Author)
	set(&b.ISBN, p.ISBN)
	set(&b.ISSN, p.ISSN)
	set(&b.Section, p.Section)
	set(&b.Description, p.Description)
	set(&b.DateAdded, p.DateAdded)
	if p.Quantity != nil {
		b.Quantity = *p.Quantity
	}
}

func validate(b Book) error {
	switch {
	case b.Title == "", b.Author == "", b.ISBN == "", b.Section == "", b.DateAdded == "":
		return fmt.Errorf("%w: title, author, isbn, section and dateAdded are required", checkout.ErrValidation)
	case b.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", checkout.ErrValidation)
	}
	return nil
}

// nextID is one past the largest numeric id in use. Deleting the newest book
// frees its id for reuse.
func nextID(bs []Book) checkout.ID {
	highest := 0
	for _, b := range bs {
		if n, err := strconv.Atoi(string(b.ID)); err == nil && n > highest {
			highest = n
		}
	}
	return checkout.ID(strconv.Itoa(highest + 1))
}

func indexOf(bs []Book, id checkout.ID) int {
	for i := range bs {
		if bs[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfISBN(bs []Book, isbn string) int {
	for i := range bs {
		if bs[i].ISBN == isbn {
			return i
		}
	}
	return -1
}
