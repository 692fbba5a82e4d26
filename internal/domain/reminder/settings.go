package reminder

// Range is the content filter applied to the scoped item set.
type Range string

const (
	RangeAll      Range = "all"
	RangeSpecific Range = "specific"
	RangeLearned  Range = "learned"
	RangeConfused Range = "confused"
)

// Format controls which item fields appear in the notification text.
type Format string

const (
	FormatBoth        Format = "both"
	FormatWordOnly    Format = "word_only"
	FormatMeaningOnly Format = "meaning_only"
)

// Order is the presentation order policy for a batch.
type Order string

const (
	OrderSequential Order = "sequential"
	OrderRandom     Order = "random"
)

// SectionAll is the sentinel section id meaning "the whole library".
const SectionAll = "all"

// MinIntervalMinutes is the smallest spacing accepted when settings are
// entered; enforcement lives at the command-parsing boundary, not in the
// engine.
const MinIntervalMinutes = 10

// Settings is the single persisted reminder configuration for a user.
// It is always written wholesale, never field by field.
type Settings struct {
	Enabled         bool   `json:"enabled"`
	LibraryID       string `json:"library_id"`
	SectionID       string `json:"section_id"`
	Range           Range  `json:"range"`
	RangeStart      *int   `json:"range_start,omitempty"`
	RangeEnd        *int   `json:"range_end,omitempty"`
	Format          Format `json:"format"`
	Order           Order  `json:"order"`
	IntervalMinutes int    `json:"interval"`
}

// Active reports whether the settings can produce a schedule at all.
func (s *Settings) Active() bool {
	return s != nil && s.Enabled && s.LibraryID != ""
}

// WholeLibrary reports whether scoping covers the whole library rather than
// a single section.
func (s *Settings) WholeLibrary() bool {
	return s.SectionID == "" || s.SectionID == SectionAll
}
