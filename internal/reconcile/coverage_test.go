package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAllocateOldestFirstWithPartialBoundary(t *testing.T) {
	// display order is newest first: 30 (newest), 50, 100 (oldest)
	got := Allocate([]decimal.Decimal{d("30"), d("50"), d("100")}, d("120"))

	if got[2].State != Covered || !got[2].Applied.Equal(d("100")) {
		t.Fatalf("oldest item should be fully covered: %+v", got[2])
	}
	if got[1].State != Partial || !got[1].Percent.Equal(d("40")) || !got[1].Applied.Equal(d("20")) {
		t.Fatalf("middle item should be 40%% partial: %+v", got[1])
	}
	if got[0].State != Uncovered || !got[0].Applied.IsZero() {
		t.Fatalf("newest item should be uncovered: %+v", got[0])
	}
}

func TestAllocateAtMostOnePartial(t *testing.T) {
	amounts := []decimal.Decimal{d("10"), d("10"), d("10"), d("10")}
	for _, paid := range []string{"0", "5", "10", "15", "25", "40", "55"} {
		partials := 0
		for _, c := range Allocate(amounts, d(paid)) {
			if c.State == Partial {
				partials++
			}
		}
		if partials > 1 {
			t.Fatalf("paid=%s produced %d partial items", paid, partials)
		}
	}
}

func TestAllocateExhaustedPoolLeavesRestUncovered(t *testing.T) {
	got := Allocate([]decimal.Decimal{d("25"), d("50")}, d("50"))
	if got[1].State != Covered {
		t.Fatalf("oldest should be covered: %+v", got[1])
	}
	if got[0].State != Uncovered {
		t.Fatalf("nothing left for newest, want uncovered: %+v", got[0])
	}
}

func TestAllocateOverpaymentCoversEverything(t *testing.T) {
	for _, c := range Allocate([]decimal.Decimal{d("1"), d("2")}, d("10")) {
		if c.State != Covered || !c.Percent.Equal(d("100")) {
			t.Fatalf("expected all covered, got %+v", c)
		}
	}
}

func TestAllocateEmpty(t *testing.T) {
	if got := Allocate(nil, d("10")); len(got) != 0 {
		t.Fatalf("expected no coverage entries, got %d", len(got))
	}
}
