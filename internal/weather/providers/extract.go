package providers

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/i474232898/weatherapp/internal/common"
	"github.com/i474232898/weatherapp/internal/weather"
)

// matcher selects element nodes.
type matcher func(*html.Node) bool

func byClass(class string) matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, "class")
		if !ok {
			return false
		}
		for _, c := range strings.Fields(v) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func byID(id string) matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	}
}

func byTag(tag string) matcher {
	return func(n *html.Node) bool { return n.Data == tag }
}

// rule extracts one labelled value. Each step of path narrows the search to
// the first descendant matching it. The value is the text of the final node,
// or the named attribute when attr is set.
type rule struct {
	label    string
	path     []matcher
	attr     string
	required bool

	// firstText takes only the first non-empty text node instead of all text.
	firstText bool
}

func (r rule) apply(doc *html.Node) (string, bool) {
	n := doc
	for _, m := range r.path {
		if n = find(n, m); n == nil {
			return "", false
		}
	}

	var v string
	switch {
	case r.attr != "":
		v, _ = attr(n, r.attr)
	case r.firstText:
		v = firstText(n)
	default:
		v = text(n)
	}
	v = common.CleanText(v)
	return v, v != ""
}

// extract parses raw as HTML and applies rules in order. It fails when a
// required rule or every rule finds nothing.
func extract(raw []byte, rules []rule) (weather.Reading, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return weather.Reading{}, fmt.Errorf("%w: %v", weather.ErrParse, err)
	}

	var reading weather.Reading
	for _, r := range rules {
		v, ok := r.apply(doc)
		if !ok {
			if r.required {
				return weather.Reading{}, fmt.Errorf("%w: %s not found", weather.ErrParse, r.label)
			}
			continue
		}
		reading.Set(r.label, v)
	}
	if reading.Len() == 0 {
		return weather.Reading{}, fmt.Errorf("%w: no known elements on page", weather.ErrParse)
	}
	return reading, nil
}

// find returns the first element below n, in document order, that matches m.
func find(n *html.Node, m matcher) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && m(c) {
			return c
		}
		if found := find(c, m); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func firstText(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return c.Data
		}
		if c.Type == html.ElementNode {
			if t := firstText(c); t != "" {
				return t
			}
		}
	}
	return ""
}
