package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Buffer_PeekDoesNotConsume(t *testing.T) {
	b := New(strings.NewReader("abc"))
	r, ok := b.Peek(0)
	assert.True(t, ok)
	assert.Equal(t, 'a', r)
	r, ok = b.Peek(2)
	assert.True(t, ok)
	assert.Equal(t, 'c', r)

	assert.Equal(t, 1, b.Line())
	assert.Equal(t, 1, b.Col())
}

func Test_Buffer_AtEnd(t *testing.T) {
	b := New(strings.NewReader(""))
	assert.True(t, b.AtEnd())

	b2 := New(strings.NewReader("x"))
	assert.False(t, b2.AtEnd())
}

func Test_Buffer_CommitAdvancesLineCol(t *testing.T) {
	b := New(strings.NewReader("ab\ncd"))
	b.Mark()
	got := b.Commit(3) // "ab\n"
	assert.Equal(t, "ab\n", got)
	assert.Equal(t, 2, b.Line())
	assert.Equal(t, 1, b.Col())

	b.Mark()
	got = b.Commit(2)
	assert.Equal(t, "cd", got)
	assert.Equal(t, 2, b.Line())
	assert.Equal(t, 3, b.Col())
}

func Test_Buffer_CommitHandlesCRLFAsOneLine(t *testing.T) {
	b := New(strings.NewReader("a\r\nb"))
	b.Mark()
	b.Commit(3) // "a\r\n"
	assert.Equal(t, 2, b.Line())
	assert.Equal(t, 1, b.Col())
}

func Test_Buffer_MarkAndReset(t *testing.T) {
	b := New(strings.NewReader("abc"))
	b.Mark()
	_, _ = b.Peek(0)
	_, _ = b.Peek(1)
	b.Reset()
	got := b.Commit(1)
	assert.Equal(t, "a", got)
}
