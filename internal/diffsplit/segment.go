// Package diffsplit splits a unified git diff into per-file segments and
// groups those segments into named scopes.
package diffsplit

import (
	"regexp"
	"strconv"
	"strings"
)

// FileSegment is one file's contribution to a diff.
type FileSegment struct {
	// Path is the post-change path taken from the "to" side of the header.
	Path string
	// Text runs from the file header up to the next header or end of input,
	// with trailing newlines trimmed.
	Text string
}

// HeaderMatcher recognizes the line that opens a new file section and
// extracts the destination path from it.
type HeaderMatcher interface {
	MatchHeader(line string) (path string, ok bool)
}

// gitHeaderPattern matches "diff --git a/<from> b/<to>". The leading .+ is
// greedy so the last " b/" on the line is taken as the boundary.
var gitHeaderPattern = regexp.MustCompile(`^diff --git a/.+ b/(.+)$`)

const gitHeaderPrefix = "diff --git "

// GitHeaderMatcher matches the two-path header emitted by git diff. Either
// side may be C-quoted ("a/caf\303\251.md") when the path holds bytes git
// escapes; the returned path is always unquoted.
type GitHeaderMatcher struct{}

func (GitHeaderMatcher) MatchHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, gitHeaderPrefix) {
		return "", false
	}
	rest := strings.TrimSuffix(line, "\r")[len(gitHeaderPrefix):]

	if strings.HasPrefix(rest, `"`) {
		_, n, ok := readQuoted(rest)
		if !ok || n >= len(rest) || rest[n] != ' ' {
			return "", false
		}
		return destPath(rest[n+1:])
	}
	if strings.HasSuffix(rest, `"`) {
		i := strings.LastIndex(rest, ` "b/`)
		if i < 0 || !strings.HasPrefix(rest, "a/") {
			return "", false
		}
		return destPath(rest[i+1:])
	}

	m := gitHeaderPattern.FindStringSubmatch(gitHeaderPrefix + rest)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// destPath strips the "b/" prefix from the to-side of a header, unquoting
// it first when needed.
func destPath(side string) (string, bool) {
	if strings.HasPrefix(side, `"`) {
		path, n, ok := readQuoted(side)
		if !ok || n != len(side) {
			return "", false
		}
		side = path
	}
	path, ok := strings.CutPrefix(side, "b/")
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

// readQuoted decodes the C-style quoted string at the start of s and
// reports how many bytes it consumed.
func readQuoted(s string) (string, int, bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			unquoted, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", 0, false
			}
			return unquoted, i + 1, true
		}
	}
	return "", 0, false
}

// Segmenter splits raw diff text with a pluggable header matcher.
type Segmenter struct {
	Matcher HeaderMatcher
}

// NewSegmenter returns a Segmenter for git's unified diff dialect.
func NewSegmenter() *Segmenter {
	return &Segmenter{Matcher: GitHeaderMatcher{}}
}

type headerMatch struct {
	offset int
	path   string
}

// Segment splits raw into per-file segments in input order. A diff without
// any recognizable header yields an empty result.
func (s *Segmenter) Segment(raw string) []FileSegment {
	matches := s.scanHeaders(raw)
	if len(matches) == 0 {
		return nil
	}

	segments := make([]FileSegment, 0, len(matches))
	for i, m := range matches {
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1].offset
		}
		segments = append(segments, FileSegment{
			Path: m.path,
			Text: strings.TrimRight(raw[m.offset:end], "\n"),
		})
	}
	return segments
}

func (s *Segmenter) scanHeaders(raw string) []headerMatch {
	matcher := s.Matcher
	if matcher == nil {
		matcher = GitHeaderMatcher{}
	}

	var matches []headerMatch
	offset := 0
	for offset < len(raw) {
		lineEnd := strings.IndexByte(raw[offset:], '\n')
		next := len(raw)
		line := raw[offset:]
		if lineEnd >= 0 {
			line = raw[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		}
		if path, ok := matcher.MatchHeader(line); ok {
			matches = append(matches, headerMatch{offset: offset, path: path})
		}
		offset = next
	}
	return matches
}

// Segment splits raw using the git header matcher.
func Segment(raw string) []FileSegment {
	return NewSegmenter().Segment(raw)
}

// Paths returns the segment paths in order.
func Paths(segments []FileSegment) []string {
	paths := make([]string, 0, len(segments))
	for _, seg := range segments {
		paths = append(paths, seg.Path)
	}
	return paths
}
