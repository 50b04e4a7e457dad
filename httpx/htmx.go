package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Toast kinds understood by the front end.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Toast is the payload of the "toast" event.
type Toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ListChange asks the page to insert or replace a table row.
type ListChange struct {
	Action   string `json:"action"` // "prepend" or "replace"
	Target   string `json:"target,omitempty"`
	Selector string `json:"selector,omitempty"`
	HTML     string `json:"html"`
}

// Modal asks the page to act on a modal dialog.
type Modal struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

// Events is the HX-Trigger payload, keyed by event name.
type Events map[string]any

func (e Events) Toast(message, kind string) Events {
	e["toast"] = Toast{Message: message, Type: kind}
	return e
}

// Prepend inserts html at the top of the table body target (e.g. "#clients-table-body").
func (e Events) Prepend(target, html string) Events {
	e["listChanged"] = ListChange{Action: "prepend", Target: target, HTML: html}
	return e
}

// Replace swaps the element matching selector (e.g. "#client-4") for html.
func (e Events) Replace(selector, html string) Events {
	e["listChanged"] = ListChange{Action: "replace", Selector: selector, HTML: html}
	return e
}

func (e Events) CloseModal(target string) Events {
	e["modal"] = Modal{Action: "close", Target: target}
	return e
}

// Header encodes the events as an ASCII-only JSON header value.
func (e Events) Header() (string, error) {
	b, err := json.Marshal(map[string]any(e))
	if err != nil {
		return "", fmt.Errorf("encode HX-Trigger: %w", err)
	}
	return asciiJSON(b), nil
}

// Set writes the HX-Trigger header. Call before WriteHeader.
func (e Events) Set(w http.ResponseWriter) error {
	if len(e) == 0 {
		return nil
	}
	v, err := e.Header()
	if err != nil {
		return err
	}
	w.Header().Set("HX-Trigger", v)
	return nil
}

// asciiJSON escapes non-ASCII runes as \uXXXX so header values stay 7-bit.
func asciiJSON(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r < utf8.RuneSelf {
			sb.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r -= 0x10000
			fmt.Fprintf(&sb, `\u%04x\u%04x`, 0xD800+(r>>10), 0xDC00+(r&0x3FF))
			continue
		}
		fmt.Fprintf(&sb, `\u%04x`, r)
	}
	return sb.String()
}

// Redirect sends plain requests a 303 and htmx requests an HX-Redirect.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
