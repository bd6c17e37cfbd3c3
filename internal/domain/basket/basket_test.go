package basket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyOf(t *testing.T) {
	tally := TallyOf([]string{"orange", "apple", "apple", "orange", "orange"})

	assert.Equal(t, 3, tally.Count("orange"))
	assert.Equal(t, 2, tally.Count("apple"))
	assert.Equal(t, 0, tally.Count("banana"))
	assert.Equal(t, []string{"orange", "apple"}, tally.Items())
	assert.False(t, tally.Empty())
}

func TestTallyOfEmpty(t *testing.T) {
	tally := TallyOf(nil)

	assert.True(t, tally.Empty())
	assert.Empty(t, tally.Items())
}

func TestTallyOrderIndependentCounts(t *testing.T) {
	a := TallyOf([]string{"apple", "orange", "apple"})
	b := TallyOf([]string{"orange", "apple", "apple"})

	for _, id := range a.Items() {
		assert.Equal(t, a.Count(id), b.Count(id))
	}
	// First-appearance order still reflects the submitted sequence.
	assert.Equal(t, []string{"apple", "orange"}, a.Items())
	assert.Equal(t, []string{"orange", "apple"}, b.Items())
}
