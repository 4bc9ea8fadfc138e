package date

import (
	"iter"
	"slices"
	"sort"
)

// History stores a chronological series of values, each associated with a
// specific date. Dates are unique and the series is always sorted.
type History[T float32 | float64 | string] struct {
	days   []Date
	values []T
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero values.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T)
	}
	return h.days[last], h.values[last]
}

// Oldest returns the earliest date and value in the history.
func (h *History[T]) Oldest() (day Date, value T) {
	if len(h.days) == 0 {
		return Date{}, *new(T)
	}
	return h.days[0], h.values[0]
}

// chronological is a private implementation to keep the history sorted.
type chronological[T float32 | float64 | string] struct{ *History[T] }

func (s chronological[T]) Len() int           { return len(s.days) }
func (s chronological[T]) Less(i, j int) bool { return s.days[i].time().Before(s.days[j].time()) }
func (s chronological[T]) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

func (h *History[T]) sort() { sort.Sort(chronological[T]{h}) }

// Append adds a point to the history. An existing value at that date is
// overwritten.
func (h *History[T]) Append(on Date, v T) *History[T] {
	if i := slices.Index(h.days, on); i >= 0 {
		h.values[i] = v
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, v)
	h.sort()
	return h
}

// Values returns an iterator over all date/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at 'day' and true, or a zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	if i := slices.Index(h.days, day); i >= 0 {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// search locates the insertion index of day in the sorted day list.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})
}

// ValueAsOf returns the value on a given day, or the most recent value
// before it. It returns false when no value exists on or before the day.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// ValueAsOfNext returns the value on a given day, or the first value after
// it. It returns false when no value exists on or after the day.
func (h *History[T]) ValueAsOfNext(day Date) (T, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	if i >= len(h.values) {
		var zero T
		return zero, false
	}
	return h.values[i], true
}

// After returns up to n date/value pairs strictly after day, in
// chronological order. n < 0 means all of them.
func (h *History[T]) After(day Date, n int) (days []Date, values []T) {
	i, found := h.search(day)
	if found {
		i++
	}
	if n >= 0 && i+n < len(h.days) {
		return h.days[i : i+n], h.values[i : i+n]
	}
	return h.days[i:], h.values[i:]
}

// Before returns up to n date/value pairs strictly before day, in
// chronological order, ending with the most recent one. n < 0 means all.
func (h *History[T]) Before(day Date, n int) (days []Date, values []T) {
	i, _ := h.search(day)
	lo := 0
	if n >= 0 && i-n > 0 {
		lo = i - n
	}
	return h.days[lo:i], h.values[lo:i]
}

// Between returns all date/value pairs with from <= date <= to.
func (h *History[T]) Between(from, to Date) (days []Date, values []T) {
	lo, _ := h.search(from)
	hi, found := h.search(to)
	if found {
		hi++
	}
	if lo > hi {
		return nil, nil
	}
	return h.days[lo:hi], h.values[lo:hi]
}
