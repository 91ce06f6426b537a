package frontier

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is an outbound link candidate with the anchor text it was found
// under and its query-relevance score.
type Link struct {
	URL    string
	Anchor string
	Score  float64
}

// ExtractLinks tokenizes HTML and returns normalized outbound links:
// relative URLs resolved against base, fragments stripped, only http(s)
// schemes kept, deduplicated in document order.
func ExtractLinks(base *url.URL, rawHTML string) []Link {
	var links []Link
	seen := make(map[string]bool)

	tok := html.NewTokenizer(strings.NewReader(rawHTML))
	var (
		inAnchor bool
		href     string
		anchor   strings.Builder
	)

	flush := func() {
		if href == "" {
			return
		}
		normalized, ok := normalizeLink(base, href)
		if ok && !seen[normalized] {
			seen[normalized] = true
			links = append(links, Link{
				URL:    normalized,
				Anchor: strings.TrimSpace(anchor.String()),
			})
		}
		href = ""
		anchor.Reset()
	}

	for {
		switch tok.Next() {
		case html.ErrorToken:
			flush()
			return links
		case html.StartTagToken:
			t := tok.Token()
			if t.Data != "a" {
				continue
			}
			flush()
			inAnchor = true
			for _, attr := range t.Attr {
				if attr.Key == "href" {
					href = attr.Val
					break
				}
			}
		case html.TextToken:
			if inAnchor {
				anchor.WriteString(tok.Token().Data)
			}
		case html.EndTagToken:
			if tok.Token().Data == "a" {
				inAnchor = false
				flush()
			}
		}
	}
}

// normalizeLink resolves href against base and normalizes it. Returns false
// for anchors, javascript/mailto links, and non-http(s) schemes.
func normalizeLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)

	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}

	abs.Fragment = ""
	if abs.Path == "" {
		abs.Path = "/"
	}
	return abs.String(), true
}

// SameHost filters links to those on the given host.
func SameHost(base *url.URL, links []Link) []Link {
	var out []Link
	for _, l := range links {
		u, err := url.Parse(l.URL)
		if err != nil {
			continue
		}
		if u.Host == base.Host {
			out = append(out, l)
		}
	}
	return out
}
