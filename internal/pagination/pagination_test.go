package pagination

import (
	"math"
	"reflect"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateFirstAndLastPage(t *testing.T) {
	items := seq(25)

	first := Paginate(items, 0, 10)
	if !reflect.DeepEqual(first.Items, items[0:10]) {
		t.Fatalf("page 0 = %v", first.Items)
	}
	if first.HasPrev || !first.HasNext {
		t.Fatalf("page 0 flags prev=%v next=%v", first.HasPrev, first.HasNext)
	}

	last := Paginate(items, 2, 10)
	if !reflect.DeepEqual(last.Items, items[20:25]) {
		t.Fatalf("page 2 = %v", last.Items)
	}
	if !last.HasPrev || last.HasNext {
		t.Fatalf("page 2 flags prev=%v next=%v", last.HasPrev, last.HasNext)
	}
	if last.LastPage != 2 {
		t.Fatalf("last page = %d, want 2", last.LastPage)
	}
}

func TestPaginateEmpty(t *testing.T) {
	for _, p := range []int{0, 1, 7} {
		page := Paginate([]string{}, p, 10)
		if len(page.Items) != 0 {
			t.Fatalf("page %d: expected no items, got %v", p, page.Items)
		}
		if page.HasNext {
			t.Fatalf("page %d: HasNext must be false", p)
		}
		if page.LastPage != -1 {
			t.Fatalf("page %d: LastPage = %d, want -1", p, page.LastPage)
		}
	}
	if Paginate[int](nil, 0, 10).HasPrev {
		t.Fatal("page 0 of empty sequence must not have prev")
	}
}

func TestPaginateIdempotent(t *testing.T) {
	items := seq(13)
	a := Paginate(items, 1, 10)
	b := Paginate(items, 1, 10)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
}

func TestPaginateExactMultiple(t *testing.T) {
	page := Paginate(seq(20), 1, 10)
	if page.HasNext {
		t.Fatal("second of two full pages must not have next")
	}
	if len(page.Items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Items))
	}
}

func TestPaginateBeyondEnd(t *testing.T) {
	page := Paginate(seq(5), 3, 10)
	if len(page.Items) != 0 || page.HasNext || !page.HasPrev {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestPaginateHugePage(t *testing.T) {
	items := seq(25)
	for _, p := range []int{math.MaxInt / 5, math.MaxInt / 10, math.MaxInt} {
		page := Paginate(items, p, 10)
		if len(page.Items) != 0 || page.HasNext || !page.HasPrev {
			t.Fatalf("page %d = %+v", p, page)
		}
	}
}

func TestPaginateWindowIsCapped(t *testing.T) {
	items := seq(25)
	page := Paginate(items, 0, 10)
	page.Items = append(page.Items, 99)
	if items[10] != 10 {
		t.Fatal("appending to a page must not overwrite the source sequence")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		p, n, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{-3, 25, 0},
		{2, 25, 2},
		{9, 25, 2},
		{1, 10, 0},
	}
	for _, tc := range cases {
		if got := Clamp(tc.p, tc.n, 10); got != tc.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tc.p, tc.n, got, tc.want)
		}
	}
}
