package actor

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Selection is a path-based addressing expression bound to an anchor
// cell (component F). Resolving a Selection against the live tree is
// external to this package (SPEC_FULL.md §4.4); Selection only carries
// the parsed (anchor, relative-path) pair.
type Selection struct {
	Anchor BasicRef
	Path   string
}

type parsedPath struct {
	absolute bool
	relative string
}

var pathCache, _ = lru.New[string, parsedPath](1024)

// newSelection implements ctx.select(path): an absolute path anchors at
// userRoot with userRoot's own path prefix stripped; a relative path
// anchors at myself. An empty path is invalid (scenario 6).
func newSelection(myself, userRoot BasicRef, path string) (Selection, error) {
	if path == "" {
		return Selection{}, ErrInvalidPath
	}

	cacheKey := userRoot.Path() + "\x00" + path
	parsed, ok := pathCache.Get(cacheKey)
	if !ok {
		parsed = parsePath(userRoot.Path(), path)
		pathCache.Add(cacheKey, parsed)
	}

	if parsed.absolute {
		return Selection{Anchor: userRoot, Path: parsed.relative}, nil
	}
	return Selection{Anchor: myself, Path: parsed.relative}, nil
}

func parsePath(userRootPath, path string) parsedPath {
	if !strings.HasPrefix(path, "/") {
		return parsedPath{absolute: false, relative: path}
	}

	anchorPrefix := strings.TrimRight(userRootPath, "/") + "/"
	return parsedPath{absolute: true, relative: strings.TrimPrefix(path, anchorPrefix)}
}

// Resolve walks Selection.Path as a sequence of plain child names under
// Anchor via the children registry. It only supports exact-name traversal
// (no wildcards, no remote segments): the general selection resolver is
// an external collaborator per SPEC_FULL.md §4.4.
func (s Selection) Resolve() (BasicRef, bool) {
	cur := s.Anchor
	if s.Path == "" {
		return cur, true
	}

	for _, segment := range strings.Split(s.Path, "/") {
		if segment == "" {
			continue
		}
		var next BasicRef
		found := false
		for _, child := range cur.Children() {
			if child.Name() == segment {
				next, found = child, true
				break
			}
		}
		if !found {
			return BasicRef{}, false
		}
		cur = next
	}
	return cur, true
}
