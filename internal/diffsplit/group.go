package diffsplit

import (
	"sort"
	"strings"
)

// RootScope names the group holding files that live at the repository root.
const RootScope = "root"

// ScopeGroup is a named set of file segments that becomes one commit.
type ScopeGroup struct {
	Scope        string
	Files        []string
	CombinedText string
}

// Group partitions segments into scopes and returns them sorted by scope.
//
// When every nested path shares the same top-level directory, grouping uses
// the second path component; otherwise it uses the first. Paths too short
// for the chosen depth fall back to their first component, and files with
// no directory land in RootScope.
func Group(segments []FileSegment) []ScopeGroup {
	if len(segments) == 0 {
		return nil
	}

	depth := scopeDepth(segments)
	byScope := make(map[string]*ScopeGroup)
	for _, seg := range segments {
		scope := scopeFor(seg.Path, depth)
		group, ok := byScope[scope]
		if !ok {
			group = &ScopeGroup{Scope: scope}
			byScope[scope] = group
		}

		group.Files = append(group.Files, seg.Path)
		if group.CombinedText != "" {
			group.CombinedText += "\n"
		}
		group.CombinedText += seg.Text
	}

	groups := make([]ScopeGroup, 0, len(byScope))
	for _, group := range byScope {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Scope < groups[j].Scope
	})
	return groups
}

func scopeDepth(segments []FileSegment) int {
	topDirs := make(map[string]struct{})
	for _, seg := range segments {
		parts := pathParts(seg.Path)
		if len(parts) > 1 {
			topDirs[parts[0]] = struct{}{}
		}
	}
	if len(topDirs) == 1 {
		return 1
	}
	return 0
}

func scopeFor(path string, depth int) string {
	parts := pathParts(path)
	switch {
	case len(parts) > depth+1:
		return parts[depth]
	case len(parts) > 1:
		return parts[0]
	default:
		return RootScope
	}
}

// pathParts splits a slash path into its non-empty components, so "a//b"
// and "./a/b" behave like "a/b".
func pathParts(path string) []string {
	raw := strings.Split(path, "/")
	parts := raw[:0]
	for _, p := range raw {
		if p == "" || p == "." {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

// AllFiles returns every file across groups in group order.
func AllFiles(groups []ScopeGroup) []string {
	var files []string
	for _, g := range groups {
		files = append(files, g.Files...)
	}
	return files
}
