// Package change tracks which photo represents each country and what moved
// between two assignments.
package change

import (
	"sort"
	"time"
)

// Photo is a reference to one user photo. The compositor only ever sees the
// photo chosen for a country, never the full history.
type Photo struct {
	ID          string    `json:"id"`
	CountryCode string    `json:"country_code"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Assignment maps a country code to the photo shown for it.
type Assignment map[string]Photo

// Clone returns an independent copy. A nil assignment clones to an empty one.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Codes returns the assigned country codes in ascending order.
func (a Assignment) Codes() []string {
	codes := make([]string, 0, len(a))
	for k := range a {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

// Equal reports whether both assignments hold the same photo identities for
// the same countries.
func (a Assignment) Equal(b Assignment) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || w.ID != v.ID {
			return false
		}
	}
	return true
}

// ChangeSet is the difference between two assignments.
type ChangeSet struct {
	// AddedOrUpdated holds entries that are new or whose photo changed.
	AddedOrUpdated Assignment
	// Removed lists codes that lost their photo, sorted.
	Removed []string
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.AddedOrUpdated) == 0 && len(c.Removed) == 0
}

// Diff compares by photo ID. Either side may be nil.
func Diff(prev, cur Assignment) ChangeSet {
	cs := ChangeSet{AddedOrUpdated: Assignment{}}
	for code, p := range cur {
		old, ok := prev[code]
		if !ok || old.ID != p.ID {
			cs.AddedOrUpdated[code] = p
		}
	}
	for code := range prev {
		if _, ok := cur[code]; !ok {
			cs.Removed = append(cs.Removed, code)
		}
	}
	sort.Strings(cs.Removed)
	return cs
}

// Latest builds an assignment from a photo stream, keeping the most recently
// created photo per country. Equal timestamps are broken by the greater ID so
// the result does not depend on input order. Photos without a country code
// are ignored.
func Latest(photos []Photo) Assignment {
	out := make(Assignment)
	for _, p := range photos {
		if p.CountryCode == "" {
			continue
		}
		cur, ok := out[p.CountryCode]
		if !ok || newer(p, cur) {
			out[p.CountryCode] = p
		}
	}
	return out
}

func newer(a, b Photo) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
