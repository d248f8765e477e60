package jsonview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ParseError describes why text is not JSON. Offset is the byte offset of
// the offending character in Source, or -1 when unknown.
type ParseError struct {
	Msg    string `json:"message"`
	Source string `json:"-"`
	Offset int    `json:"offset"`
	Line   int    `json:"line,omitempty"`
	Col    int    `json:"column,omitempty"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.Msg)
	}
	return e.Msg
}

var (
	openFence  = regexp.MustCompile("(?i)^```json\\s*")
	plainFence = regexp.MustCompile("^```\\s*")
	closeFence = regexp.MustCompile("\\s*```$")
	oddSpaces  = strings.NewReplacer("\u00a0", " ", "\u3000", " ", "\u200b", " ")
)

// Clean strips markdown code fences and turns no-break, ideographic and
// zero-width spaces into plain spaces.
func Clean(text string) string {
	text = openFence.ReplaceAllString(text, "")
	text = plainFence.ReplaceAllString(text, "")
	text = closeFence.ReplaceAllString(text, "")
	return oddSpaces.Replace(text)
}

// Parse reads text as JSON. Text that is not strict JSON but is a loose
// object or array literal (single quotes, bare keys, trailing commas) is
// accepted too. On failure the strict parser's error is returned.
func Parse(text string) (Value, error) {
	src := Clean(strings.TrimSpace(text))

	v, err := parseStrict(src)
	if err == nil {
		return v, nil
	}
	if lv, lerr := parseLenient(src); lerr == nil {
		return lv, nil
	}
	return Value{}, err
}

// ParseStrict reads text as standard JSON only.
func ParseStrict(text string) (Value, error) {
	return parseStrict(text)
}

func parseStrict(src string) (Value, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		return Value{}, strictError(src, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return Value{}, &ParseError{Msg: err.Error(), Source: src, Offset: -1}
	}
	return v, nil
}

func strictError(src string, err error) *ParseError {
	perr := &ParseError{Msg: err.Error(), Source: src, Offset: -1}

	var se *json.SyntaxError
	if !errors.As(err, &se) {
		return perr
	}
	off := int(se.Offset)
	if strings.Contains(se.Error(), "unexpected end") {
		off = len(src)
	} else if off > 0 {
		// Offset counts the bad character itself.
		off--
	}
	perr.Offset = off
	perr.Line, perr.Col = LineCol(src, off)
	return perr
}

func decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := Value{Kind: Object, Members: []Member{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T", keyTok)
				}
				val, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				v.Members = append(v.Members, Member{Key: key, Value: val})
			}
			_, err := dec.Token()
			return v, err
		case '[':
			v := Value{Kind: Array, Items: []Value{}}
			for dec.More() {
				val, err := decode(dec)
				if err != nil {
					return Value{}, err
				}
				v.Items = append(v.Items, val)
			}
			_, err := dec.Token()
			return v, err
		}
		return Value{}, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return Value{Kind: String, Text: t}, nil
	case json.Number:
		return Value{Kind: Number, Text: t.String()}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case nil:
		return Value{Kind: Null}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %T", tok)
}

var numberLiteral = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)

// parseLenient accepts object and array literals in YAML flow syntax, which
// covers single quotes, unquoted keys and trailing commas.
func parseLenient(src string) (Value, error) {
	if src == "" || (src[0] != '{' && src[0] != '[') {
		return Value{}, errors.New("not an object or array literal")
	}

	var doc yaml.Node
	dec := yaml.NewDecoder(strings.NewReader(src))
	if err := dec.Decode(&doc); err != nil {
		return Value{}, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("trailing content after literal")
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return Value{}, errors.New("not a single document")
	}
	root := doc.Content[0]
	if root.Style&yaml.FlowStyle == 0 {
		return Value{}, errors.New("not a flow literal")
	}
	return fromYAML(root)
}

func fromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return Value{}, errors.New("aliases are not JSON")
	case yaml.MappingNode:
		v := Value{Kind: Object, Members: []Member{}}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: object key must be a scalar", k.Line)
			}
			val, err := fromYAML(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			v.Members = append(v.Members, Member{Key: k.Value, Value: val})
		}
		return v, nil
	case yaml.SequenceNode:
		v := Value{Kind: Array, Items: []Value{}}
		for _, c := range n.Content {
			val, err := fromYAML(c)
			if err != nil {
				return Value{}, err
			}
			v.Items = append(v.Items, val)
		}
		return v, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return Value{}, fmt.Errorf("line %d: unsupported node", n.Line)
}

func scalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Value{Kind: Null}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Value{Kind: Bool, Bool: b}, nil
	case "!!int":
		if numberLiteral.MatchString(n.Value) {
			return Value{Kind: Number, Text: n.Value}, nil
		}
		i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: Number, Text: strconv.FormatInt(i, 10)}, nil
	case "!!float":
		if numberLiteral.MatchString(n.Value) {
			return Value{Kind: Number, Text: n.Value}, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return Value{}, fmt.Errorf("line %d: %s is not a JSON number", n.Line, n.Value)
		}
		return Value{Kind: Number, Text: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	default:
		return Value{Kind: String, Text: n.Value}, nil
	}
}

// LineCol converts a byte offset in text to a 1-based line and column.
// Columns count characters, not bytes.
func LineCol(text string, offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	lastNL := strings.LastIndexByte(before, '\n')
	col = utf8.RuneCountInString(before[lastNL+1:]) + 1
	return line, col
}

// AutoPrettify reformats text pasted as a single line of JSON. Other text is
// returned unchanged with ok false.
func AutoPrettify(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.ContainsAny(trimmed, "\r\n") {
		return text, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return text, false
	}
	v, err := Parse(trimmed)
	if err != nil {
		return text, false
	}
	return v.Pretty(), true
}
