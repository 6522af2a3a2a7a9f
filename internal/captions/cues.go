package captions

import (
	"iter"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WordSpan is one recognized word. Start and End are seconds from the start
// of the media; either may be nil when the recognizer could not align the
// word.
type WordSpan struct {
	Text  string
	Start *float64
	End   *float64
}

// Cue is a single subtitle event.
type Cue struct {
	Text  string
	Start float64
	End   float64
}

// BuildCues lazily maps spans to cues in input order. Spans missing either
// boundary are dropped; text is uppercased and the boundaries are passed
// through untouched. The returned sequence is as restartable as spans is.
func BuildCues(spans iter.Seq[WordSpan]) iter.Seq[Cue] {
	return func(yield func(Cue) bool) {
		upper := cases.Upper(language.Und)
		for span := range spans {
			if span.Start == nil || span.End == nil {
				continue
			}
			cue := Cue{Text: upper.String(span.Text), Start: *span.Start, End: *span.End}
			if !yield(cue) {
				return
			}
		}
	}
}

// CollectCues materializes BuildCues over a slice. An empty result means
// there is nothing to caption.
func CollectCues(spans []WordSpan) []Cue {
	return slices.Collect(BuildCues(slices.Values(spans)))
}
