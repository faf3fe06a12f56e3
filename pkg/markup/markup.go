// Package markup converts between the small HTML dialect users write
// (<b>, <i>, <u>, <s>, <a href>, <blockquote> and their synonyms) and the
// plain text plus formatting spans that messages carry.
//
// Span offsets and lengths count UTF-16 code units, the way the service and
// its clients index strings: one unit per BMP rune, two above U+FFFF.
package markup

import (
	"cmp"
	"html"
	"slices"
	"strings"
	"unicode/utf16"

	xhtml "golang.org/x/net/html"

	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

var tagTypes = map[string]maxapi.ElementType{
	"a":          maxapi.ElementLink,
	"b":          maxapi.ElementStrong,
	"strong":     maxapi.ElementStrong,
	"i":          maxapi.ElementEmphasized,
	"em":         maxapi.ElementEmphasized,
	"u":          maxapi.ElementUnderline,
	"ins":        maxapi.ElementUnderline,
	"s":          maxapi.ElementStrikethrough,
	"strike":     maxapi.ElementStrikethrough,
	"del":        maxapi.ElementStrikethrough,
	"blockquote": maxapi.ElementQuote,
}

// cdataTags keep their content as raw text.
var cdataTags = map[string]bool{"script": true, "style": true}

// typeTags picks one tag per kind for Unparse. Kinds without a tag
// (mentions, animoji, headings) are left out of the markup.
var typeTags = map[maxapi.ElementType]string{
	maxapi.ElementLink:          "a",
	maxapi.ElementStrong:        "b",
	maxapi.ElementEmphasized:    "i",
	maxapi.ElementUnderline:     "u",
	maxapi.ElementStrikethrough: "s",
	maxapi.ElementQuote:         "blockquote",
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Units returns the length of s in UTF-16 code units.
func Units(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

type frame struct {
	kind  maxapi.ElementType
	start int
	attrs *maxapi.ElementAttributes
}

// parser holds the state of one Parse call.
type parser struct {
	text   strings.Builder
	cursor int
	stack  []frame
	out    []maxapi.Element
}

func (p *parser) write(s []byte) {
	p.text.Write(s)
	p.cursor += Units(string(s))
}

func (p *parser) open(kind maxapi.ElementType, attrs *maxapi.ElementAttributes) {
	p.stack = append(p.stack, frame{kind: kind, start: p.cursor, attrs: attrs})
}

// close ends the innermost open frame of kind. Frames of other kinds above
// it stay open.
func (p *parser) close(kind maxapi.ElementType) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		f := p.stack[i]
		if f.kind != kind {
			continue
		}
		p.stack = slices.Delete(p.stack, i, i+1)
		p.out = append(p.out, maxapi.Element{
			Type:       f.kind,
			From:       f.start,
			Length:     p.cursor - f.start,
			Attributes: f.attrs,
		})
		return
	}
}

// Parse strips the markup from s and returns the plain text with its
// spans, ordered by offset and then by length. Unknown tags are dropped
// with their content kept; unmatched tags produce no span. Parse never
// fails.
func Parse(s string) (string, []maxapi.Element) {
	var p parser
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			slices.SortStableFunc(p.out, func(a, b maxapi.Element) int {
				return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.Length, b.Length))
			})
			return p.text.String(), p.out
		case xhtml.TextToken:
			p.write(z.Text())
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if tt == xhtml.StartTagToken && !cdataTags[string(name)] {
				// textarea, title and the like would swallow the markup
				// after them as raw text.
				z.NextIsNotRawText()
			}
			kind, ok := tagTypes[string(name)]
			if !ok {
				continue
			}
			var attrs *maxapi.ElementAttributes
			if kind == maxapi.ElementLink {
				attrs = href(z, hasAttr)
			}
			p.open(kind, attrs)
			if tt == xhtml.SelfClosingTagToken {
				p.close(kind)
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if kind, ok := tagTypes[string(name)]; ok {
				p.close(kind)
			}
		}
	}
}

func href(z *xhtml.Tokenizer, more bool) *maxapi.ElementAttributes {
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		if string(key) == "href" {
			return &maxapi.ElementAttributes{URL: string(val)}
		}
	}
	return nil
}

// event is one tag to write at a text position. Closing tags sort before
// opening ones; closes go innermost first and opens outermost first.
type event struct {
	pos    int
	open   int // 0 close, 1 open
	weight int
	tie    int
	frag   string
}

func compareEvents(a, b event) int {
	return cmp.Or(
		cmp.Compare(a.pos, b.pos),
		cmp.Compare(a.open, b.open),
		cmp.Compare(a.weight, b.weight),
		cmp.Compare(a.tie, b.tie),
	)
}

// Unparse renders text and its spans back into markup, escaping the text
// and link targets. Spans reaching outside the text are clamped to it and
// kinds without a tag are skipped. For the output of Parse,
// Parse(Unparse(text, spans)) returns text and spans unchanged.
func Unparse(text string, spans []maxapi.Element) string {
	if len(spans) == 0 {
		return html.EscapeString(text)
	}
	total := Units(text)
	events := make([]event, 0, 2*len(spans))
	for i, sp := range spans {
		tag, ok := typeTags[sp.Type]
		if !ok {
			continue
		}
		from := min(max(sp.From, 0), total)
		end := min(max(sp.From+sp.Length, from), total)

		open := "<" + tag + ">"
		if sp.Type == maxapi.ElementLink && sp.Attributes != nil {
			open = `<a href="` + html.EscapeString(sp.Attributes.URL) + `">`
		}
		closing := "</" + tag + ">"

		// An empty span would otherwise close before it opens. Empty spans
		// at one position come out in input order, inside the others.
		if from == end {
			events = append(events, event{pos: from, open: 1, tie: i, frag: open + closing})
			continue
		}
		// Equal spans open in reverse input order and close in input order,
		// so the re-parsed spans keep their order.
		n := end - from
		events = append(events,
			event{pos: from, open: 1, weight: -n, tie: -i, frag: open},
			event{pos: end, open: 0, weight: n, tie: i, frag: closing},
		)
	}
	slices.SortFunc(events, compareEvents)

	var b strings.Builder
	b.Grow(len(text) + 16*len(events))
	next, cursor, start := 0, 0, 0
	for i, r := range text {
		if next < len(events) && events[next].pos <= cursor {
			b.WriteString(html.EscapeString(text[start:i]))
			start = i
			for next < len(events) && events[next].pos <= cursor {
				b.WriteString(events[next].frag)
				next++
			}
		}
		cursor += runeUnits(r)
	}
	b.WriteString(html.EscapeString(text[start:]))
	for ; next < len(events); next++ {
		b.WriteString(events[next].frag)
	}
	return b.String()
}
