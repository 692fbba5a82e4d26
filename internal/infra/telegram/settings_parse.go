package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"vocab_reminder_bot/internal/domain/reminder"
)

const defaultIntervalMinutes = 60

// parseReminderSettings builds an enabled Settings record from /remind
// arguments: a library id followed by optional key=value pairs (section,
// range, from, to, format, order, interval). Validation the engine itself
// does not perform (minimum interval, complete bounds for the specific
// range) happens here, at the command boundary.
func parseReminderSettings(args []string) (*reminder.Settings, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: /remind <libraryID> [section=...] [range=all|specific|learned|confused] [from=N] [to=N] [format=both|word_only|meaning_only] [order=sequential|random] [interval=minutes]")
	}

	s := &reminder.Settings{
		Enabled:         true,
		LibraryID:       args[0],
		SectionID:       reminder.SectionAll,
		Range:           reminder.RangeAll,
		Format:          reminder.FormatBoth,
		Order:           reminder.OrderSequential,
		IntervalMinutes: defaultIntervalMinutes,
	}

	for _, arg := range args[1:] {
		key, value, found := strings.Cut(arg, "=")
		if !found || value == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		switch key {
		case "section":
			s.SectionID = value
		case "range":
			switch reminder.Range(value) {
			case reminder.RangeAll, reminder.RangeSpecific, reminder.RangeLearned, reminder.RangeConfused:
				s.Range = reminder.Range(value)
			default:
				return nil, fmt.Errorf("unknown range %q", value)
			}
		case "from":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid from position %q", value)
			}
			s.RangeStart = &n
		case "to":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid to position %q", value)
			}
			s.RangeEnd = &n
		case "format":
			switch reminder.Format(value) {
			case reminder.FormatBoth, reminder.FormatWordOnly, reminder.FormatMeaningOnly:
				s.Format = reminder.Format(value)
			default:
				return nil, fmt.Errorf("unknown format %q", value)
			}
		case "order":
			switch reminder.Order(value) {
			case reminder.OrderSequential, reminder.OrderRandom:
				s.Order = reminder.Order(value)
			default:
				return nil, fmt.Errorf("unknown order %q", value)
			}
		case "interval":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid interval %q", value)
			}
			s.IntervalMinutes = n
		default:
			return nil, fmt.Errorf("unknown option %q", key)
		}
	}

	if s.IntervalMinutes < reminder.MinIntervalMinutes {
		return nil, fmt.Errorf("interval must be at least %d minutes", reminder.MinIntervalMinutes)
	}
	if s.Range == reminder.RangeSpecific {
		if s.RangeStart == nil || s.RangeEnd == nil {
			return nil, fmt.Errorf("range=specific needs both from= and to=")
		}
		if *s.RangeStart > *s.RangeEnd {
			return nil, fmt.Errorf("from position must not exceed to position")
		}
	}
	return s, nil
}
