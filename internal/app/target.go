package app

import (
	"math/rand"
	"sort"

	"vocab_reminder_bot/internal/domain/item"
	"vocab_reminder_bot/internal/domain/reminder"
)

// TargetItems computes the ordered list of items still due for delivery:
// range filter over the scoped set, exclusion of already-shown ids, then
// ordering per the settings. An empty result is valid and means "nothing
// left to schedule". Pure; no storage or network access.
func TargetItems(s *reminder.Settings, scoped []item.Item, shownIDs map[string]struct{}, rng *rand.Rand) []item.Item {
	if s == nil || s.LibraryID == "" {
		return nil
	}

	filtered := FilteredSet(s, scoped)
	out := make([]item.Item, 0, len(filtered))
	for _, it := range filtered {
		if _, seen := shownIDs[it.ID]; !seen {
			out = append(out, it)
		}
	}

	switch s.Order {
	case reminder.OrderRandom:
		rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DisplayOrder < out[j].DisplayOrder
		})
	}
	return out
}

// FilteredSet applies only the range filter to the scoped set. The progress
// tracker uses this as its denominator, so shown items are deliberately not
// excluded here.
func FilteredSet(s *reminder.Settings, scoped []item.Item) []item.Item {
	switch s.Range {
	case reminder.RangeConfused:
		return filterByStatus(scoped, item.StatusConfused)
	case reminder.RangeLearned:
		return filterByStatus(scoped, item.StatusLearned)
	case reminder.RangeSpecific:
		// Positional bounds apply to the scoped, unfiltered list. With
		// either bound missing the filter is skipped entirely.
		if s.RangeStart == nil || s.RangeEnd == nil {
			return scoped
		}
		lo, hi := *s.RangeStart, *s.RangeEnd
		out := make([]item.Item, 0, len(scoped))
		for i, it := range scoped {
			if i >= lo && i <= hi {
				out = append(out, it)
			}
		}
		return out
	default:
		return scoped
	}
}

func filterByStatus(items []item.Item, status item.StudyStatus) []item.Item {
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if it.StudyStatus == status {
			out = append(out, it)
		}
	}
	return out
}
