package urlmap

import (
	"net/url"
	"strings"
)

// Ref is what a menu item URL points at. It is one of CollectionRef,
// ProductRef or UnknownRef.
type Ref interface {
	isRef()
}

// CollectionRef points at a Shopify collection
type CollectionRef struct {
	Handle string
}

// ProductRef points at a Shopify product
type ProductRef struct {
	Handle string
}

// UnknownRef is anything else: pages, blogs, external links, empty or malformed URLs
type UnknownRef struct {
	Raw string
}

func (CollectionRef) isRef() {}
func (ProductRef) isRef()    {}
func (UnknownRef) isRef()    {}

const (
	collectionsSegment = "collections"
	productsSegment    = "products"
)

// Classify parses a menu item URL. Absolute URLs, relative paths and
// trailing query strings or fragments are accepted. The handle is the last
// non-empty path segment; the kind comes from the last "collections" or
// "products" segment that is followed by at least one more segment.
func Classify(raw string) Ref {
	segments := urlSegments(raw)
	for i := len(segments) - 2; i >= 0; i-- {
		handle := segments[len(segments)-1]
		switch segments[i] {
		case collectionsSegment:
			return CollectionRef{Handle: handle}
		case productsSegment:
			return ProductRef{Handle: handle}
		}
	}
	return UnknownRef{Raw: raw}
}

// urlSegments returns the non-empty, percent-decoded path segments of a
// menu item URL, ignoring scheme, host, query and fragment. Unparseable
// input yields nil.
func urlSegments(raw string) []string {
	raw = stripQuery(strings.TrimSpace(raw))
	if raw == "" {
		return nil
	}

	var p string
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "//") {
		u, err := url.Parse(raw)
		if err != nil {
			return nil
		}
		p = u.Path
	} else {
		unescaped, err := url.PathUnescape(raw)
		if err != nil {
			return nil
		}
		p = unescaped
	}
	return splitSegments(p)
}

// requestSegments returns the non-empty segments of a request path. Request
// paths arrive decoded and never carry a host, so a leading "//" is just an
// empty segment.
func requestSegments(path string) []string {
	return splitSegments(stripQuery(strings.TrimSpace(path)))
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

func splitSegments(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
