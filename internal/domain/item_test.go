package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParent(t *testing.T) {
	assert.Equal(t, "", Parent("README"))
	assert.Equal(t, "bibxml", Parent("bibxml/reference.RFC.2119.xml"))
	assert.Equal(t, "a/b", Parent("a/b/c"))
}

func TestAncestors(t *testing.T) {
	assert.Nil(t, Ancestors("README"))
	assert.Equal(t, []ItemID{"a"}, Ancestors("a/b"))
	assert.Equal(t, []ItemID{"a", "a/b"}, Ancestors("a/b/c"))
	assert.Nil(t, Ancestors("/a"))
	assert.Equal(t, []ItemID{"a"}, Ancestors("a//b"))
	for _, anc := range Ancestors("x//y/z") {
		assert.NotEmpty(t, anc)
	}
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 1, Depth("a"))
	assert.Equal(t, 3, Depth("a/b/c"))
}

func TestIsDescendant(t *testing.T) {
	assert.True(t, IsDescendant("a/b", "a"))
	assert.True(t, IsDescendant("a/b/c", "a"))
	assert.False(t, IsDescendant("a", "a"))
	assert.False(t, IsDescendant("ab/c", "a"), "sibling sharing a name prefix")
}

func TestBase(t *testing.T) {
	assert.Equal(t, "README", Base("README"))
	assert.Equal(t, "reference.RFC.2119.xml", Base("bibxml/reference.RFC.2119.xml"))
	assert.False(t, IsHierarchical(Base("a/b/c")))
}
