package checkout

import (
	"math/rand"
	"testing"
)

func items(statuses ...Status) []Item {
	out := make([]Item, len(statuses))
	for i, s := range statuses {
		out[i] = Item{BookID: ID(rune('a' + i)), Quantity: 1, Status: s}
	}
	return out
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		name  string
		items []Item
		want  Status
	}{
		{"no items", nil, StatusPending},
		{"all pending", items(StatusPending, StatusPending), StatusPending},
		{"all approved", items(StatusApproved, StatusApproved), StatusApproved},
		{"all rejected", items(StatusRejected), StatusRejected},
		{"approved and pending", items(StatusApproved, StatusPending), StatusPartiallyApproved},
		{"rejected and pending", items(StatusRejected, StatusPending), StatusPartiallyApproved},
		{"approved and rejected", items(StatusApproved, StatusRejected), StatusPartiallyApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Aggregate(tc.items); got != tc.want {
				t.Fatalf("Aggregate = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAggregate_IsFunctionOfCounts(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	choices := []Status{StatusPending, StatusApproved, StatusRejected}

	for n := 0; n < 500; n++ {
		total := 1 + r.Intn(6)
		its := make([]Item, total)
		approved, rejected := 0, 0
		for i := range its {
			s := choices[r.Intn(len(choices))]
			its[i].Status = s
			if s == StatusApproved {
				approved++
			} else if s == StatusRejected {
				rejected++
			}
		}

		var want Status
		switch {
		case approved == total:
			want = StatusApproved
		case rejected == total:
			want = StatusRejected
		case approved+rejected > 0:
			want = StatusPartiallyApproved
		default:
			want = StatusPending
		}
		if got := Aggregate(its); got != want {
			t.Fatalf("approved=%d rejected=%d total=%d: got %s want %s", approved, rejected, total, got, want)
		}
	}
}
