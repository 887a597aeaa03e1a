package dom

import (
	"strings"

	"golang.org/x/net/html"
)

type declaration struct {
	prop, value string
}

func parseStyle(n *html.Node) []declaration {
	raw, _ := Attr(n, "style")
	var decls []declaration
	for _, part := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{prop: prop, value: strings.TrimSpace(value)})
	}
	return decls
}

// Style returns the inline value of a CSS property, or "".
func Style(n *html.Node, prop string) string {
	for _, d := range parseStyle(n) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// SetStyle sets an inline CSS property; an empty value removes it. It
// reports whether the style attribute changed.
func SetStyle(n *html.Node, prop, value string) bool {
	decls := parseStyle(n)
	idx := -1
	for i, d := range decls {
		if d.prop == prop {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0 && value == "":
		decls = append(decls[:idx], decls[idx+1:]...)
	case idx >= 0:
		if decls[idx].value == value {
			return false
		}
		decls[idx].value = value
	case value == "":
		return false
	default:
		decls = append(decls, declaration{prop: prop, value: value})
	}

	if len(decls) == 0 {
		return RemoveAttr(n, "style")
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value
	}
	return SetAttr(n, "style", strings.Join(parts, "; "))
}

// Hidden reports whether n is hidden with display: none.
func Hidden(n *html.Node) bool {
	return Style(n, "display") == "none"
}

// SetHidden toggles display: none on n and reports whether it changed.
func SetHidden(n *html.Node, hidden bool) bool {
	if hidden {
		return SetStyle(n, "display", "none")
	}
	if !Hidden(n) {
		return false
	}
	return SetStyle(n, "display", "")
}
