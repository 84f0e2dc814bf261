package stream

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rzbill/xstream/pkg/id"
)

func seedStream(t *testing.T, n int) (*Stream, []id.ID) {
	t.Helper()
	s := New("s")
	ids := make([]id.ID, n)
	for i := 0; i < n; i++ {
		ids[i] = s.Append(Fields{"i": json.Number(string(rune('0' + i)))}, 1000)
	}
	return s, ids
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	s, ids := seedStream(t, 5)
	for i := 1; i < len(ids); i++ {
		if !ids[i-1].Less(ids[i]) {
			t.Fatalf("expected increasing ids: %v", ids)
		}
	}
	if s.Len() != 5 {
		t.Fatalf("want len 5, got %d", s.Len())
	}
	tail, ok := s.Tail()
	if !ok || tail != ids[4] {
		t.Fatalf("tail mismatch: %s", tail)
	}
}

func TestEmptyStream(t *testing.T) {
	s := New("empty")
	if s.Len() != 0 {
		t.Fatalf("want 0")
	}
	if _, ok := s.Tail(); ok {
		t.Fatalf("empty stream has no tail")
	}
	if got := s.Range(RangeOptions{Start: id.Min, End: id.Max}); len(got) != 0 {
		t.Fatalf("want empty range, got %d", len(got))
	}
	if got := s.EntriesAfter(id.Min, 0); len(got) != 0 {
		t.Fatalf("want empty read, got %d", len(got))
	}
}

func TestRangeForwardWithCount(t *testing.T) {
	s, ids := seedStream(t, 5)
	items := s.Range(RangeOptions{Start: id.Min, End: id.Max, Count: 3})
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}
	for i := range items {
		if items[i].ID != ids[i] {
			t.Fatalf("range is not a prefix of the history at %d", i)
		}
	}
}

func TestRangeDefaultsCount(t *testing.T) {
	s, _ := seedStream(t, 10)
	for i := 0; i < 5; i++ {
		s.Append(Fields{"extra": "x"}, 2000)
	}
	if got := s.Range(RangeOptions{Start: id.Min, End: id.Max}); len(got) != DefaultCount {
		t.Fatalf("want default %d, got %d", DefaultCount, len(got))
	}
	if got := s.Range(RangeOptions{Start: id.Min, End: id.Max, Count: -4}); len(got) != DefaultCount {
		t.Fatalf("non-positive count should default, got %d", len(got))
	}
}

func TestRangeInclusiveBounds(t *testing.T) {
	s, ids := seedStream(t, 5)
	items := s.Range(RangeOptions{Start: ids[1], End: ids[3], Count: 100})
	if len(items) != 3 || items[0].ID != ids[1] || items[2].ID != ids[3] {
		t.Fatalf("unexpected bounded range: %v", items)
	}
	if got := s.Range(RangeOptions{Start: ids[3], End: ids[1]}); len(got) != 0 {
		t.Fatalf("inverted bounds should be empty")
	}
}

func TestRangeMatchSkipsWithoutCounting(t *testing.T) {
	s := New("m")
	for i := 0; i < 6; i++ {
		kind := "odd"
		if i%2 == 0 {
			kind = "even"
		}
		s.Append(Fields{"kind": kind}, uint64(100+i))
	}
	items := s.Range(RangeOptions{Start: id.Min, End: id.Max, Count: 2, Match: func(e Entry) bool {
		return e.Fields["kind"] == "odd"
	}})
	if len(items) != 2 {
		t.Fatalf("want 2 odd entries, got %d", len(items))
	}
	if items[0].ID.Ms != 101 || items[1].ID.Ms != 103 {
		t.Fatalf("unexpected matches %v", items)
	}
}

func TestEntriesAfterExcludesCursor(t *testing.T) {
	s, ids := seedStream(t, 5)
	after := s.EntriesAfter(ids[1], 0)
	if len(after) != 3 || after[0].ID != ids[2] {
		t.Fatalf("expected entries after the 2nd, got %v", after)
	}
	if got := s.EntriesAfter(ids[1], 2); len(got) != 2 {
		t.Fatalf("limit not applied: %d", len(got))
	}
	if got := s.EntriesAfter(ids[4], 0); len(got) != 0 {
		t.Fatalf("nothing follows the tail")
	}
}

func TestAppendCopiesFields(t *testing.T) {
	s := New("c")
	f := Fields{"a": "1"}
	s.Append(f, 1)
	f["a"] = "mutated"
	got := s.Range(RangeOptions{Start: id.Min, End: id.Max})
	if got[0].Fields["a"] != "1" {
		t.Fatalf("stored entry was mutated through caller map")
	}
}

func TestConcurrentAppendsAreOrdered(t *testing.T) {
	s := New("burst")
	const workers, per = 8, 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				s.Append(Fields{"v": "x"}, 42)
			}
		}()
	}
	// concurrent readers must always observe a strictly ordered prefix
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			items := s.EntriesAfter(id.Min, 0)
			for j := 1; j < len(items); j++ {
				if !items[j-1].ID.Less(items[j].ID) {
					t.Errorf("reader saw out-of-order ids")
					return
				}
			}
		}
	}()
	wg.Wait()
	<-done

	all := s.EntriesAfter(id.Min, 0)
	if len(all) != workers*per || s.Len() != workers*per {
		t.Fatalf("want %d entries, got %d", workers*per, len(all))
	}
	for j := 1; j < len(all); j++ {
		if !all[j-1].ID.Less(all[j].ID) {
			t.Fatalf("ids not strictly increasing at %d", j)
		}
	}
}
