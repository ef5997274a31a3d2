package debounce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_InitialState(t *testing.T) {
	g := New("oak")
	assert.Equal(t, "oak", g.Pending())
	assert.Equal(t, "oak", g.Committed())
	assert.False(t, g.Dirty())
}

func TestGate_SetDoesNotCommit(t *testing.T) {
	g := New("")
	g.Set("den")
	g.Set("denon")

	assert.Equal(t, "denon", g.Pending())
	assert.Equal(t, "", g.Committed())
	assert.True(t, g.Dirty())
}

func TestGate_CommitIsIdempotent(t *testing.T) {
	g := New("")
	var renders []string
	g.OnCommit(func(v string) { renders = append(renders, v) })

	g.Set("oak")
	assert.True(t, g.Commit())
	assert.False(t, g.Commit())

	assert.Equal(t, "oak", g.Committed())
	assert.Equal(t, []string{"oak"}, renders)
	assert.False(t, g.Dirty())
}

func TestGate_SameValueBeforeCommit(t *testing.T) {
	g := New("")
	var count int
	g.OnCommit(func(string) { count++ })

	g.Set("oak")
	g.Set("oak")
	g.Commit()
	g.Set("oak")
	g.Commit()

	assert.Equal(t, 1, count)
}

func TestGate_CommitValue(t *testing.T) {
	g := New("")
	var got []string
	g.OnCommit(func(v string) { got = append(got, v) })

	g.Set("typed")
	assert.True(t, g.CommitValue("explicit"))
	assert.Equal(t, "explicit", g.Committed())
	assert.Equal(t, "explicit", g.Pending())
	assert.False(t, g.CommitValue("explicit"))

	assert.Equal(t, []string{"explicit"}, got)
}

func TestGate_CommitEmptyClearsQuery(t *testing.T) {
	g := New("")
	g.Set("oak")
	g.Commit()

	g.Set("")
	assert.True(t, g.Commit())
	assert.Equal(t, "", g.Committed())
}

func TestGate_MultipleListeners(t *testing.T) {
	g := New(0)
	var a, b int
	g.OnCommit(func(v int) { a = v })
	g.OnCommit(func(v int) { b = v * 2 })

	g.Set(21)
	g.Commit()

	assert.Equal(t, 21, a)
	assert.Equal(t, 42, b)
}
