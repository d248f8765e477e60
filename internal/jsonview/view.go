package jsonview

import (
	"fmt"
	"strings"

	"sidebar-toolkit/internal/sanitize"
)

// Mode selects what Process produces.
type Mode string

const (
	ModeView   Mode = "view"
	ModePretty Mode = "pretty"
	ModeMinify Mode = "minify"
)

// Status values of a Result.
const (
	StatusEmpty = "empty"
	StatusValid = "valid"
	StatusError = "error"
)

// Result is the outcome of processing the viewer's input.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	// Text is the reformatted input for pretty and minify, and the pretty
	// form otherwise. It is empty unless Status is valid.
	Text  string      `json:"text"`
	HTML  string      `json:"html"`
	Error *ParseError `json:"error,omitempty"`
}

// Process parses text and renders it for mode.
func Process(text string, mode Mode) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Status: StatusEmpty, Message: "empty"}
	}

	v, err := Parse(text)
	if err != nil {
		perr, ok := err.(*ParseError)
		if !ok {
			perr = &ParseError{Msg: err.Error(), Offset: -1}
		}
		return Result{
			Status:  StatusError,
			Message: errorStatus(perr),
			HTML:    ErrorHTML(perr),
			Error:   perr,
		}
	}

	res := Result{Status: StatusValid, Message: "valid JSON", Text: v.Pretty()}
	if mode == ModeMinify {
		res.Text = v.Minify()
	}
	res.HTML = RenderHTML(v)
	return res
}

func errorStatus(e *ParseError) string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid JSON at line %d, column %d", e.Line, e.Col)
	}
	return "invalid JSON: " + e.Msg
}

// ErrorHTML is the panel shown in place of the tree when parsing fails.
func ErrorHTML(e *ParseError) string {
	msg := e.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d, column %d\n%s", e.Line, e.Col, e.Msg)
	}
	return `<div class="json-error">` +
		`<div class="json-error-title">Parse failed</div>` +
		`<div class="json-error-msg">` + sanitize.Escape(msg) + `</div>` +
		`<div class="json-error-tip">Check for missing or extra quotes, commas and brackets. ` +
		`When copying from Markdown make sure the code fence is complete.</div>` +
		`</div>`
}
