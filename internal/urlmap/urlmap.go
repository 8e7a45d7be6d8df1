// Package urlmap maps SEO-friendly nested category paths such as
// /drinks/cola to flat Shopify collection handles, using the storefront
// navigation menu as the source of the hierarchy.
//
// Everything here is pure: a menu tree goes in, a Mapping comes out, and
// nothing is cached between calls.
package urlmap

import (
	"sort"
	"strings"

	"github.com/jafarshop/storefront/internal/domain"
)

// Mapping maps a normalized path (leading slash, no trailing slash) to a
// collection handle.
type Mapping map[string]string

// Resolution describes how a request path was resolved
type Resolution struct {
	Path    string                   `json:"path"`
	Handle  string                   `json:"handle"`
	Outcome domain.ResolutionOutcome `json:"outcome"`
}

// ExtractHandle returns the collection handle a menu item URL points at.
// Non-collection URLs return false.
func ExtractHandle(itemURL string) (string, bool) {
	switch ref := Classify(itemURL).(type) {
	case CollectionRef:
		return ref.Handle, true
	case ProductRef, UnknownRef:
		return "", false
	default:
		return "", false
	}
}

// FindParent returns the direct ancestor of node within tree. Nodes are
// matched by ID or by exact URL; empty IDs and URLs never match. The first
// parent found in depth-first pre-order wins, which only matters when the
// tree carries duplicate IDs or URLs. Root-level nodes have no parent.
func FindParent(node domain.MenuNode, tree []domain.MenuNode) (domain.MenuNode, bool) {
	for _, candidate := range tree {
		for _, child := range candidate.Items {
			if sameNode(child, node) {
				return candidate, true
			}
		}
		if parent, ok := FindParent(node, candidate.Items); ok {
			return parent, true
		}
	}
	return domain.MenuNode{}, false
}

func sameNode(a, b domain.MenuNode) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	return a.URL != "" && a.URL == b.URL
}

// BuildCategoryURL returns /{handle} for a collection node, or
// /{parentHandle}/{handle} when its immediate parent is also a collection.
// Only one level of nesting is modeled: grandparents never appear in the path.
func BuildCategoryURL(node domain.MenuNode, tree []domain.MenuNode) (string, bool) {
	handle, ok := ExtractHandle(node.URL)
	if !ok {
		return "", false
	}
	if parent, ok := FindParent(node, tree); ok {
		if parentHandle, ok := ExtractHandle(parent.URL); ok {
			return "/" + parentHandle + "/" + handle, true
		}
	}
	return "/" + handle, true
}

// BuildURLMapping registers, for every collection node at any depth, its
// category path and the flat /{handle} fallback. Non-collection nodes add
// nothing but their children are still visited.
func BuildURLMapping(tree []domain.MenuNode) Mapping {
	mapping := make(Mapping)
	Walk(tree, func(node domain.MenuNode) {
		path, ok := BuildCategoryURL(node, tree)
		if !ok {
			return
		}
		handle, _ := ExtractHandle(node.URL)
		mapping[path] = handle
		mapping["/"+handle] = handle
	})
	return mapping
}

// Walk calls fn for every node of tree in depth-first pre-order
func Walk(tree []domain.MenuNode, fn func(domain.MenuNode)) {
	for _, node := range tree {
		fn(node)
		Walk(node.Items, fn)
	}
}

// Resolve turns a request path into a collection handle: an exact mapping
// hit first, otherwise the path's last segment as a best-effort guess.
// Only a path with no segments at all fails.
func Resolve(path string, mapping Mapping) (string, bool) {
	res := ResolveDetailed(path, mapping)
	return res.Handle, res.Outcome != domain.ResolutionEmpty
}

// ResolveDetailed is Resolve that also reports whether the hit was exact
func ResolveDetailed(path string, mapping Mapping) Resolution {
	normalized := NormalizePath(path)
	if handle, ok := mapping[normalized]; ok {
		return Resolution{Path: normalized, Handle: handle, Outcome: domain.ResolutionExact}
	}
	segments := requestSegments(normalized)
	if len(segments) == 0 {
		return Resolution{Path: normalized, Outcome: domain.ResolutionEmpty}
	}
	return Resolution{
		Path:    normalized,
		Handle:  segments[len(segments)-1],
		Outcome: domain.ResolutionFallback,
	}
}

// NormalizePath drops query and fragment, collapses empty segments and
// returns the path with a leading slash and no trailing slash. The root
// path normalizes to "/".
func NormalizePath(path string) string {
	return "/" + strings.Join(requestSegments(path), "/")
}

// PathFor returns the deepest path registered for handle. Ties are broken
// lexically so the answer is stable across builds.
func (m Mapping) PathFor(handle string) (string, bool) {
	var paths []string
	for path, h := range m {
		if h == handle {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return "", false
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := strings.Count(paths[i], "/"), strings.Count(paths[j], "/")
		if di != dj {
			return di > dj
		}
		return paths[i] < paths[j]
	})
	return paths[0], true
}

// Breadcrumb is one step of a category path
type Breadcrumb struct {
	Handle string `json:"handle"`
	Path   string `json:"path"`
}

// Breadcrumbs splits a category path into its cumulative steps,
// e.g. /drinks/cola -> [/drinks, /drinks/cola].
func Breadcrumbs(path string) []Breadcrumb {
	segments := requestSegments(path)
	crumbs := make([]Breadcrumb, 0, len(segments))
	for i, s := range segments {
		crumbs = append(crumbs, Breadcrumb{
			Handle: s,
			Path:   "/" + strings.Join(segments[:i+1], "/"),
		})
	}
	return crumbs
}
