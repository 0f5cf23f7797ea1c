package determinism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStableMapIteratesInKeyOrder(t *testing.T) {
	m := NewStableMap[string, int]()
	for i, k := range []string{"7", "1", "3", "10"} {
		m.Set(k, i)
	}
	m.Set("3", 99)

	assert.Equal(t, []string{"1", "10", "3", "7"}, m.Keys())
	assert.Equal(t, []int{1, 3, 99, 0}, m.Values())
	assert.Equal(t, 4, m.Len())
}

func TestStableMapAllIsRestartable(t *testing.T) {
	m := NewStableMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	collect := func() []string {
		var keys []string
		for k := range m.All() {
			keys = append(keys, k)
		}
		return keys
	}
	assert.Equal(t, collect(), collect())
}

func TestStableMapDeleteDuringIteration(t *testing.T) {
	m := NewStableMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
		m.Delete("b")
	}
	assert.Equal(t, []string{"a", "c"}, seen)
	assert.False(t, m.Delete("b"))

	m.Clear()
	assert.Zero(t, m.Len())
	assert.False(t, m.Has("a"))
}
