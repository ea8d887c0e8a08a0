package jsonapi

import (
	"sort"
	"strings"
)

// IncludeTree is the parsed form of an `include` query parameter: a nested
// map of relationship names. A leaf is an empty map. Paths sharing a prefix
// merge rather than duplicate.
type IncludeTree map[string]IncludeTree

// Compile parses a comma-separated list of dot-delimited relationship
// paths (e.g. "quote.supplier,attachment") into an IncludeTree. Empty
// input yields an empty tree. Relationship names are not validated here;
// undeclared names are dropped later when the tree is turned into eager
// load directives, so they simply produce no records.
func Compile(includeParam string) IncludeTree {
	tree := IncludeTree{}
	if includeParam == "" {
		return tree
	}
	for _, path := range strings.Split(includeParam, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		node := tree
		for _, name := range strings.Split(path, ".") {
			if name == "" {
				continue
			}
			child, ok := node[name]
			if !ok {
				child = IncludeTree{}
				node[name] = child
			}
			node = child
		}
	}
	return tree
}

// Preloads renders the tree as gorm preload paths rooted at typeName
// ("quote.supplier" -> "Quote.Supplier"), skipping names that are not
// declared joins of the type being traversed. Result is sorted so eager
// loading is deterministic.
func (tree IncludeTree) Preloads(typeName string, registry *Registry) []string {
	var paths []string
	collectPreloads(tree, typeName, registry, "", &paths)
	sort.Strings(paths)
	return paths
}

func collectPreloads(tree IncludeTree, typeName string, registry *Registry, prefix string, paths *[]string) {
	info, ok := registry.Type(typeName)
	if !ok {
		return
	}
	for name, child := range tree {
		join, ok := info.Join(name)
		if !ok {
			continue
		}
		path := upperFirst(name)
		if prefix != "" {
			path = prefix + "." + path
		}
		*paths = append(*paths, path)
		collectPreloads(child, join.TargetType, registry, path, paths)
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
