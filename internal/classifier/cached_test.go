package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClassifier struct {
	calls int
}

func (c *countingClassifier) Classify(snippet string) Category {
	c.calls++
	return Classify(snippet)
}

func TestCachedMemoizes(t *testing.T) {
	inner := &countingClassifier{}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, CategoryLua, c.Classify("function f() local x = 1 end"))
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, CategoryCpp, c.Classify("class Entity { public: uint32_t id; };"))
	assert.Equal(t, 2, inner.calls)
}

func TestCachedEvicts(t *testing.T) {
	inner := &countingClassifier{}
	c, err := NewCached(inner, 1)
	require.NoError(t, err)

	c.Classify("a;")
	c.Classify("b;")
	c.Classify("a;")
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 1, c.Len())
}

func TestNewCachedRejectsBadSize(t *testing.T) {
	_, err := NewCached(NewHeuristic(), 0)
	assert.Error(t, err)
}
