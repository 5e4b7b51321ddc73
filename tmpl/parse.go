package tmpl

import (
	"fmt"
	"strconv"
	"strings"
)

// sentinelOpen/sentinelClose bracket an attribute-position slot marker.
// Private-use-area runes so that ordinary markup text or attribute
// values authored by callers can never collide with one by accident.
const (
	sentinelOpen  = ''
	sentinelClose = ''
)

func attrSentinel(slot int) string {
	return string(sentinelOpen) + strconv.Itoa(slot) + string(sentinelClose)
}

// textMarkerPrefix identifies a comment node inserted at a text-position
// slot. Comment data is exactly textMarkerPrefix + the slot index.
const textMarkerPrefix = "tmpl-slot:"

func textMarker(slot int) string {
	return "<!--" + textMarkerPrefix + strconv.Itoa(slot) + "-->"
}

// compiledTemplate is the content-interned result of scanning a parts
// array: the markup string ready to hand to a host's Document.ParseTemplate,
// with every slot substituted for its marker.
type compiledTemplate struct {
	markup    string
	slotCount int
}

var compileCache = map[string]*compiledTemplate{}

// compile interns parts by their joined content and returns the cached
// compiledTemplate, compiling it on first use.
func compile(parts []string) *compiledTemplate {
	key := strings.Join(parts, "\x00")
	if c, ok := compileCache[key]; ok {
		return c
	}
	c := build(parts)
	compileCache[key] = c
	return c
}

// scanPos is the position-in-markup state build tracks while
// concatenating parts, just enough to decide each slot's marker form.
type scanPos struct {
	inTag         bool
	quote         byte // 0, '"', or '\''
	unquotedValue bool // scanning an unquoted attribute value
	pendingEquals bool // just saw '=' inside a tag, haven't classified the value yet
}

func build(parts []string) *compiledTemplate {
	var b strings.Builder
	pos := scanPos{}
	for i, part := range parts {
		scanInto(&pos, part, &b)
		if i == len(parts)-1 {
			break
		}
		switch {
		case pos.quote != 0:
			b.WriteString(attrSentinel(i))
		case pos.unquotedValue || pos.pendingEquals:
			// Unquoted attribute-value position (or the instant after
			// '=' with nothing written yet): auto-wrap in quotes so the
			// sentinel can never be misread as ending the tag early.
			b.WriteByte('"')
			b.WriteString(attrSentinel(i))
			b.WriteByte('"')
			pos.unquotedValue = false
			pos.pendingEquals = false
		default:
			b.WriteString(textMarker(i))
		}
	}
	return &compiledTemplate{markup: b.String(), slotCount: len(parts) - 1}
}

// scanInto appends s to b while advancing pos character by character, a
// deliberately small HTML lexer: just enough to track tag/attribute/quote
// state for marker placement, not a validating parser (the host's real
// parser, golang.org/x/net/html under memdom or the browser under jsdom,
// does the actual parsing of the markup this produces).
func scanInto(pos *scanPos, s string, b *strings.Builder) {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		b.WriteByte(ch)

		if pos.quote != 0 {
			if ch == pos.quote {
				pos.quote = 0
			}
			continue
		}
		if pos.pendingEquals {
			pos.pendingEquals = false
			switch ch {
			case '"', '\'':
				pos.quote = ch
				continue
			default:
				pos.unquotedValue = true
			}
		}
		if pos.unquotedValue {
			if ch == ' ' || ch == '\t' || ch == '\n' || ch == '>' {
				pos.unquotedValue = false
				if ch == '>' {
					pos.inTag = false
				}
			}
			continue
		}
		switch ch {
		case '<':
			if i+1 < len(s) && s[i+1] != '/' {
				pos.inTag = true
			}
		case '>':
			pos.inTag = false
		case '=':
			if pos.inTag {
				pos.pendingEquals = true
			}
		}
	}
}

// splitSentinels splits an attribute value containing zero or more
// attrSentinel(N) occurrences into alternating static-text and slot
// segments, in order.
type valueSegment struct {
	isSlot bool
	text   string
	slot   int
}

func splitSentinels(value string) []valueSegment {
	var out []valueSegment
	for {
		start := strings.IndexRune(value, sentinelOpen)
		if start < 0 {
			if value != "" {
				out = append(out, valueSegment{text: value})
			}
			return out
		}
		if start > 0 {
			out = append(out, valueSegment{text: value[:start]})
		}
		rest := value[start+len(string(sentinelOpen)):]
		end := strings.IndexRune(rest, sentinelClose)
		if end < 0 {
			out = append(out, valueSegment{text: value[start:]})
			return out
		}
		digits := rest[:end]
		after := rest[end+len(string(sentinelClose)):]
		n, err := strconv.Atoi(digits)
		if err != nil {
			out = append(out, valueSegment{text: value[start : start+len(string(sentinelOpen))+end+len(string(sentinelClose))]})
			value = after
			continue
		}
		out = append(out, valueSegment{isSlot: true, slot: n})
		value = after
	}
}

// isSlotMarkerComment reports whether a comment node's data is a
// text-position slot marker, returning its slot index.
func isSlotMarkerComment(data string) (int, bool) {
	if !strings.HasPrefix(data, textMarkerPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(data, textMarkerPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func invalidSlotErr(n int) error {
	return fmt.Errorf("tmpl: slot %d out of range", n)
}
