package change

import (
	"reflect"
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func photo(id, code string, age time.Duration) Photo {
	return Photo{ID: id, CountryCode: code, URL: "https://example.com/" + id + ".jpg", CreatedAt: t0.Add(-age)}
}

func TestDiff(t *testing.T) {
	a1 := photo("a1", "AA", 0)
	a2 := photo("a2", "AA", 0)
	b1 := photo("b1", "BB", 0)
	c1 := photo("c1", "CC", 0)

	tests := []struct {
		name        string
		prev, cur   Assignment
		wantAdded   []string
		wantRemoved []string
	}{
		{"both nil", nil, nil, nil, nil},
		{"first run", nil, Assignment{"AA": a1, "BB": b1}, []string{"AA", "BB"}, nil},
		{"unchanged", Assignment{"AA": a1}, Assignment{"AA": a1}, nil, nil},
		{"updated", Assignment{"AA": a1, "BB": b1}, Assignment{"AA": a2, "BB": b1}, []string{"AA"}, nil},
		{"removed", Assignment{"AA": a1, "BB": b1}, Assignment{"BB": b1}, nil, []string{"AA"}},
		{"mixed", Assignment{"AA": a1, "CC": c1}, Assignment{"AA": a2, "BB": b1}, []string{"AA", "BB"}, []string{"CC"}},
		{"everything removed", Assignment{"CC": c1, "AA": a1}, Assignment{}, nil, []string{"AA", "CC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := Diff(tt.prev, tt.cur)

			added := cs.AddedOrUpdated.Codes()
			if len(added) == 0 {
				added = nil
			}
			if !reflect.DeepEqual(added, tt.wantAdded) {
				t.Errorf("added = %v, want %v", added, tt.wantAdded)
			}
			if !reflect.DeepEqual(cs.Removed, tt.wantRemoved) {
				t.Errorf("removed = %v, want %v", cs.Removed, tt.wantRemoved)
			}
			if cs.Empty() != (tt.wantAdded == nil && tt.wantRemoved == nil) {
				t.Errorf("Empty() = %v", cs.Empty())
			}
		})
	}
}

func TestDiff_CarriesCurrentPhoto(t *testing.T) {
	cs := Diff(Assignment{"AA": photo("a1", "AA", 0)}, Assignment{"AA": photo("a2", "AA", 0)})
	if got := cs.AddedOrUpdated["AA"].ID; got != "a2" {
		t.Errorf("expected the current photo a2, got %s", got)
	}
}

func TestLatest(t *testing.T) {
	photos := []Photo{
		photo("old", "AA", time.Hour),
		photo("new", "AA", 0),
		photo("mid", "AA", time.Minute),
		photo("b", "BB", 0),
		photo("orphan", "", 0),
	}

	got := Latest(photos)
	if len(got) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(got))
	}
	if got["AA"].ID != "new" {
		t.Errorf("expected newest photo for AA, got %s", got["AA"].ID)
	}
	if got["BB"].ID != "b" {
		t.Errorf("expected b for BB, got %s", got["BB"].ID)
	}
}

func TestLatest_TieIsOrderIndependent(t *testing.T) {
	x := photo("x", "AA", 0)
	y := photo("y", "AA", 0)

	if Latest([]Photo{x, y})["AA"].ID != "y" || Latest([]Photo{y, x})["AA"].ID != "y" {
		t.Error("tie not broken by ID")
	}
}

func TestAssignment_CloneAndEqual(t *testing.T) {
	a := Assignment{"AA": photo("a1", "AA", 0)}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone not equal")
	}

	b["BB"] = photo("b1", "BB", 0)
	if _, ok := a["BB"]; ok {
		t.Error("clone shares storage")
	}
	if a.Equal(b) {
		t.Error("different assignments compare equal")
	}
	if !Assignment(nil).Equal(Assignment{}) {
		t.Error("nil and empty should be equal")
	}
	if len(Assignment(nil).Clone()) != 0 {
		t.Error("nil clone not empty")
	}
}
