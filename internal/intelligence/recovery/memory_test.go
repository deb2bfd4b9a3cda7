package recovery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiversityMemoryRememberAndContains(t *testing.T) {
	m := NewDiversityMemory(0)
	assert.False(t, m.Contains("NaCl"))

	m.Remember("NaCl")
	assert.True(t, m.Contains("NaCl"))
	assert.False(t, m.Contains("Fe2O3"))
	assert.Equal(t, 1, m.Len())
}

func TestDiversityMemoryNeverExceedsCap(t *testing.T) {
	m := NewDiversityMemory(0)
	for i := 0; i < 100; i++ {
		m.Remember(fmt.Sprintf("F%d", i))
		assert.LessOrEqual(t, m.Len(), 20)
	}
	assert.Equal(t, 20, m.Len())

	// Oldest evicted first: the surviving entries are the last 20 inserted.
	assert.False(t, m.Contains("F79"))
	assert.True(t, m.Contains("F80"))
	assert.True(t, m.Contains("F99"))
}

func TestDiversityMemoryEvictsByInsertionOrder(t *testing.T) {
	m := NewDiversityMemory(3)
	m.Remember("A")
	m.Remember("B")
	m.Remember("C")
	m.Remember("D")

	assert.Equal(t, []string{"B", "C", "D"}, m.Snapshot())
	assert.False(t, m.Contains("A"))
}

func TestDiversityMemoryRefreshMovesToNewest(t *testing.T) {
	m := NewDiversityMemory(3)
	m.Remember("A")
	m.Remember("B")
	m.Remember("A") // refresh, no duplicate entry
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"B", "A"}, m.Snapshot())

	m.Remember("C")
	m.Remember("D") // evicts B, the oldest, not A
	assert.Equal(t, []string{"A", "C", "D"}, m.Snapshot())
}
