package generic

import (
	"sort"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	assert := assert_.New(t)

	s := NewSet[string]()
	assert.Equal(0, s.Len())
	assert.False(s.Contains("video"))
	assert.True(s.Add("video"))
	assert.True(s.Contains("video"))
	assert.False(s.Add("video"))
	assert.Equal(1, s.Len())
	assert.True(s.Remove("video"))
	assert.False(s.Remove("video"))
	assert.Equal(0, s.Len())

	kinds := NewSet("video", "audio", "video")
	assert.Equal(2, kinds.Len())
	assert.False(kinds.Contains("storyboard"))
	items := kinds.Items()
	sort.Strings(items)
	assert.Equal([]string{"audio", "video"}, items)

	kinds.Clear()
	assert.Equal(0, kinds.Len())
	assert.False(kinds.Contains("video"))
}

type stringer interface{ String() string }

type named string

func (n named) String() string { return string(n) }

type pointerNamed struct{ name string }

func (n *pointerNamed) String() string { return n.name }

func TestInterfaceSet(t *testing.T) {
	assert := assert_.New(t)

	a := &pointerNamed{"a"}
	b := &pointerNamed{"a"}
	s := NewInterfaceSet[stringer](a, named("a"))
	assert.Equal(2, s.Len())
	// Pointers compare by identity, not by content
	assert.True(s.Contains(a))
	assert.False(s.Contains(b))
	assert.True(s.Add(b))
	assert.False(s.Add(named("a")))
	assert.Equal(3, s.Len())
	assert.True(s.Remove(a))
	assert.Len(s.Items(), 2)
}
