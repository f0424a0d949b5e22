package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/store"
)

func newTestService() (*Service, *store.Collection[Notification]) {
	s := store.NewFileStore(afero.NewMemMapFs(), "/data")
	c := store.NewCollection[Notification](s, CollectionName)
	svc := NewService(c)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time {
		base = base.Add(time.Minute)
		return base
	}
	return svc, c
}

func TestCreateAndList(t *testing.T) {
	svc, c := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, Notification{UserID: "42", Message: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, Notification{UserID: "42", Message: "again", Type: TypeBookApproved})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "" || first.Type != TypeGeneral || first.Read {
		t.Fatalf("defaults not applied: %+v", first)
	}

	stored, _ := c.All(ctx)
	if stored[0].ID != second.ID {
		t.Fatalf("new notifications are prepended, got %+v", stored)
	}

	ns, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 2 || ns[0].ID != second.ID || ns[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", ns)
	}
}

func TestCreate_RequiresMessage(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Create(context.Background(), Notification{UserID: "1"}); !errors.Is(err, checkout.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreate_DuplicateIDWritesOnce(t *testing.T) {
	svc, c := newTestService()
	ctx := context.Background()

	n := Notification{ID: "msg-1", Message: "approved"}
	if _, err := svc.Create(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}
	n.Message = "approved twice"
	got, err := svc.Create(ctx, n)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if got.Message != "approved" {
		t.Fatalf("expected the stored notification, got %+v", got)
	}
	if stored, _ := c.All(ctx); len(stored) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(stored))
	}
}

func TestMarkRead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	n, _ := svc.Create(ctx, Notification{Message: "hi"})

	got, err := svc.MarkRead(ctx, n.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !got.Read {
		t.Fatalf("expected read")
	}
	if _, err := svc.MarkRead(ctx, "missing"); !errors.Is(err, checkout.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotification_LegacyID(t *testing.T) {
	var n Notification
	if err := json.Unmarshal([]byte(`{"_id":"1700000000000","userId":7,"message":"m","read":true}`), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.ID != "1700000000000" || n.UserID != "7" || !n.Read {
		t.Fatalf("legacy notification not decoded: %+v", n)
	}
}
