package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Counts are the previewer's text statistics.
type Counts struct {
	Words          int `json:"words"`
	CharsNoSpace   int `json:"chars_no_space"`
	CharsWithSpace int `json:"chars_with_space"`
}

var latinWord = regexp.MustCompile(`[a-zA-Z_']+`)

// Count computes the statistics of text. Each CJK ideograph counts as a word.
func Count(text string) Counts {
	var c Counts
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fa5 {
			c.Words++
		}
		if !unicode.IsSpace(r) {
			c.CharsNoSpace++
		}
	}
	c.Words += len(latinWord.FindAllStringIndex(text, -1))
	c.CharsWithSpace = utf8.RuneCountInString(text)
	return c
}

var (
	imageRef = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	bareURL  = regexp.MustCompile(`https?://[^\s"'()\[\]{}]+`)
)

// EmbedImages turns every bare http(s) URL that is not already an image
// reference into Markdown image syntax. It returns the new text and how many
// URLs were converted.
func EmbedImages(text string) (string, int) {
	known := make(map[string]bool)
	for _, m := range imageRef.FindAllStringSubmatch(text, -1) {
		known[strings.TrimSpace(m[1])] = true
	}

	var out strings.Builder
	last, n := 0, 0
	for _, loc := range bareURL.FindAllStringIndex(text, -1) {
		u := text[loc[0]:loc[1]]
		if known[u] {
			continue
		}
		out.WriteString(text[last:loc[0]])
		out.WriteString("![](" + u + ")")
		last = loc[1]
		n++
	}
	out.WriteString(text[last:])
	return out.String(), n
}
