package schedule

import "time"

// Result is the outcome of one evaluation.
type Result struct {
	// Items is the evaluated item list with expired items removed and the
	// Active flags recomputed.
	Items []Item
	// Selected points into Items at the chosen item, or is nil.
	Selected *Item
	// Index is the position of Selected in Items, or -1.
	Index int
	// ExpiredRemoved reports whether any item was dropped for being expired.
	ExpiredRemoved bool
}

// URL returns the selected item's URL, absent when nothing was selected.
func (r Result) URL() OptionalURL {
	if r.Selected == nil {
		return NoURL
	}
	return SomeURL(r.Selected.URL)
}

// TruncateMinute zeroes the seconds and sub-second part of t in its own
// location.
func TruncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// Select evaluates items at now. Items whose expiry is strictly before now
// are dropped; of the remaining items, the first one whose activation is
// absent or not after the start of now's minute is selected, even when its
// URL is empty. The input slice is not modified.
func Select(items []Item, now time.Time) Result {
	res := Result{
		Items: make([]Item, 0, len(items)),
		Index: -1,
	}
	instant := FromTime(now)
	for _, it := range items {
		if !it.ExpiresAt.IsZero() && it.ExpiresAt < instant {
			res.ExpiredRemoved = true
			continue
		}
		it.Active = false
		res.Items = append(res.Items, it)
	}

	minute := FromTime(TruncateMinute(now))
	for i := range res.Items {
		it := &res.Items[i]
		if it.ActivateAt.IsZero() || it.ActivateAt <= minute {
			it.Active = true
			res.Index = i
			res.Selected = it
			break
		}
	}
	return res
}
