package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 6: path selection.
func TestSelectAbsolutePath(t *testing.T) {
	sys := &stubSystem{}
	userRoot := NewCell(0, URI{Name: "user", Path: "/user"}, nil, sys, nil, nil)
	sys.userRoot = userRoot

	foo := NewCell(1, URI{Name: "foo", Path: "/user/foo"}, &userRoot, sys, nil, nil)
	ctx := &Context[int]{Myself: NewRef(foo, nil), System: sys}

	sel, err := ctx.Select("/user/foo/bar")
	require.NoError(t, err)
	require.True(t, sel.Anchor.Equal(userRoot))
	require.Equal(t, "foo/bar", sel.Path)
}

func TestSelectRelativePath(t *testing.T) {
	sys := &stubSystem{}
	userRoot := NewCell(0, URI{Name: "user", Path: "/user"}, nil, sys, nil, nil)
	sys.userRoot = userRoot
	foo := NewCell(1, URI{Name: "foo", Path: "/user/foo"}, &userRoot, sys, nil, nil)
	ctx := &Context[int]{Myself: NewRef(foo, nil), System: sys}

	sel, err := ctx.Select("child")
	require.NoError(t, err)
	require.True(t, sel.Anchor.Equal(foo))
	require.Equal(t, "child", sel.Path)
}

func TestSelectEmptyPathIsInvalid(t *testing.T) {
	sys := &stubSystem{}
	userRoot := NewCell(0, URI{Name: "user", Path: "/user"}, nil, sys, nil, nil)
	sys.userRoot = userRoot
	ctx := &Context[int]{Myself: NewRef(userRoot, nil), System: sys}

	_, err := ctx.Select("")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestSelectionResolveWalksChildren(t *testing.T) {
	sys := &stubSystem{}
	userRoot := NewCell(0, URI{Name: "user", Path: "/user"}, nil, sys, nil, nil)
	sys.userRoot = userRoot
	foo := NewCell(1, URI{Name: "foo", Path: "/user/foo"}, &userRoot, sys, nil, nil)
	require.NoError(t, userRoot.AddChild(foo))

	bar := NewCell(2, URI{Name: "bar", Path: "/user/foo/bar"}, &foo, sys, nil, nil)
	require.NoError(t, foo.AddChild(bar))

	sel := Selection{Anchor: userRoot, Path: "foo/bar"}
	resolved, ok := sel.Resolve()
	require.True(t, ok)
	require.True(t, resolved.Equal(bar))

	_, ok = (Selection{Anchor: userRoot, Path: "nope"}).Resolve()
	require.False(t, ok)
}
