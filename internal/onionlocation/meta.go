package onionlocation

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ValueCheck is the validation outcome of one emitted header value.
type ValueCheck struct {
	Value string `json:"value"`
	Error error  `json:"-"`
}

// OK reports whether the value is valid.
func (v ValueCheck) OK() bool {
	return v.Error == nil
}

// ValidateHTML finds every <meta http-equiv="onion-location"> tag of an
// HTML page and validates its content with ValidateHeaderValue. A page
// without such a tag yields an empty slice.
func ValidateHTML(r io.Reader) ([]ValueCheck, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	checks := make([]ValueCheck, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" &&
			strings.EqualFold(getAttr(n, "http-equiv"), HeaderName) {
			value := strings.TrimSpace(getAttr(n, "content"))
			checks = append(checks, ValueCheck{
				Value: value,
				Error: ValidateHeaderValue(value),
			})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return checks, nil
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
