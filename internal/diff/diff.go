package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind labels a span of diff output.
type Kind int

const (
	// Unchanged text appears on both sides.
	Unchanged Kind = iota
	// Added text only appears on the right side.
	Added
	// Removed text only appears on the left side.
	Removed
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// MarshalText encodes the kind by name so spans serialize as {"kind":"added"}.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Span is a labeled contiguous run of text produced by Compare.
type Span struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// Result is the outcome of comparing two texts.
type Result struct {
	// Spans is empty when Identical is true.
	Spans []Span
	// Identical is set when both texts are equal and not blank.
	// Callers show a "no differences" notice instead of rendering spans.
	Identical bool
}

// Compare computes a character-level diff of left and right.
func Compare(left, right string) Result {
	if left == right && strings.TrimSpace(left) != "" {
		return Result{Identical: true}
	}

	// DiffMain works on runes and would turn invalid bytes into U+FFFD.
	// Diff byte-wise instead so both sides still reconstruct exactly.
	bytewise := !utf8.ValidString(left) || !utf8.ValidString(right)
	if bytewise {
		left, right = bytesToRunes(left), bytesToRunes(right)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(left, right, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	if bytewise {
		for i := range diffs {
			diffs[i].Text = runesToBytes(diffs[i].Text)
		}
	}

	spans := make([]Span, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var kind Kind
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = Added
		case diffmatchpatch.DiffDelete:
			kind = Removed
		default:
			kind = Unchanged
		}
		// Merge with the previous span when the cleanup left two runs of the same kind.
		if n := len(spans); n > 0 && spans[n-1].Kind == kind {
			spans[n-1].Text += d.Text
			continue
		}
		spans = append(spans, Span{Text: d.Text, Kind: kind})
	}

	return Result{Spans: spans}
}

// bytesToRunes maps every byte of s to the rune with the same value.
func bytesToRunes(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = rune(s[i])
	}
	return string(r)
}

// runesToBytes reverses bytesToRunes.
func runesToBytes(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return string(b)
}

// Left reconstructs the left text from unchanged and removed spans.
func Left(spans []Span) string {
	return join(spans, Removed)
}

// Right reconstructs the right text from unchanged and added spans.
func Right(spans []Span) string {
	return join(spans, Added)
}

// HasChanges reports whether any span is added or removed.
func HasChanges(spans []Span) bool {
	for _, s := range spans {
		if s.Kind != Unchanged {
			return true
		}
	}
	return false
}

func join(spans []Span, side Kind) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Kind == Unchanged || s.Kind == side {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
