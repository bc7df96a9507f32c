package pass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraveyardCollect(t *testing.T) {
	var g graveyard[int]
	g.add(1, 10)
	g.add(2, 11)
	g.add(3, 12)

	var destroyed []int
	destroy := func(v int) { destroyed = append(destroyed, v) }

	// Nothing is old enough yet.
	g.collect(12, retireLag, destroy)
	assert.Empty(t, destroyed)

	// Frame 13: only the item buried at frame 10 is past the lag.
	g.collect(13, retireLag, destroy)
	assert.Equal(t, []int{1}, destroyed)
	assert.Len(t, g.items, 2)

	g.collect(20, retireLag, destroy)
	assert.Equal(t, []int{1, 2, 3}, destroyed)
	assert.Empty(t, g.items)
}

func TestGraveyardDrain(t *testing.T) {
	var g graveyard[string]
	g.add("a", 0)
	g.add("b", 100)

	var destroyed []string
	g.drain(func(v string) { destroyed = append(destroyed, v) })
	assert.Equal(t, []string{"a", "b"}, destroyed)
	assert.Empty(t, g.items)

	// Draining an empty graveyard is a no-op.
	g.drain(func(string) { t.Fatal("destroy called on empty graveyard") })
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, uint64(4096), growth(1))
	assert.Equal(t, uint64(4096), growth(4096))
	assert.Equal(t, uint64(8192), growth(4097))
	assert.Equal(t, uint64(1<<20), growth(1<<20-5))
}
