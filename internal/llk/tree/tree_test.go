package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Node_Dump_tokenLeaf(t *testing.T) {
	n := NewToken(1001, "NUMBER", "42", 3, 7)
	assert.Equal(t, "NUMBER (3:7, \"42\")\n", n.Dump())
}

func Test_Node_Dump_productionWithChildren(t *testing.T) {
	root := NewProduction(2001, "EXPR", 1, 1, false)
	root.AddChild(NewToken(1001, "NUMBER", "1", 1, 1))
	child := NewProduction(3001, "SYNTH1", 1, 2, true)
	child.AddChild(NewToken(1002, "PLUS", "+", 1, 2))
	child.AddChild(NewToken(1001, "NUMBER", "2", 1, 3))
	root.AddChild(child)

	want := "EXPR\n" +
		"  NUMBER (1:1, \"1\")\n" +
		"  SYNTH1\n" +
		"    PLUS (1:2, \"+\")\n" +
		"    NUMBER (1:3, \"2\")\n"
	assert.Equal(t, want, root.Dump())
}

func Test_Node_AddValue_andIsToken(t *testing.T) {
	n := NewProduction(2001, "EXPR", 1, 1, false)
	assert.False(t, n.IsToken())
	n.AddValue(IntValue(5))
	n.AddValue(StringValue("hi"))
	assert.Len(t, n.Values, 2)
	assert.Equal(t, ValInt, n.Values[0].Kind)
	assert.Equal(t, 5, n.Values[0].Int)
	assert.Equal(t, ValString, n.Values[1].Kind)
	assert.Equal(t, "hi", n.Values[1].Str)

	leaf := NewToken(1001, "NUMBER", "1", 1, 1)
	assert.True(t, leaf.IsToken())
}
