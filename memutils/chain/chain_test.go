package chain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/plinth/memutils/chain"
)

func TestChainLinks(t *testing.T) {
	var c chain.Chain

	first := c.Push(make([]byte, 64), true, chain.None)
	second := c.Push(make([]byte, 64), false, first)
	third := c.Push(make([]byte, 64), false, second)
	require.NoError(t, c.Validate())

	require.Equal(t, 3, c.Len())
	require.Equal(t, first, c.Head(third))
	require.Equal(t, third, c.Tail(first))
	require.Equal(t, 40, c.Capacity(second))
	require.Len(t, c.Data(second), 40)
	require.True(t, c.Node(first).Borrowed)

	var forward, backward []int
	c.Forward(func(index int, _ *chain.Node) bool {
		forward = append(forward, index)
		return true
	})
	c.Backward(func(index int, _ *chain.Node) bool {
		backward = append(backward, index)
		return true
	})
	require.Equal(t, []int{first, second, third}, forward)
	require.Equal(t, []int{third, second, first}, backward)
}

func TestChainInsertInMiddle(t *testing.T) {
	var c chain.Chain

	first := c.Push(make([]byte, 32), false, chain.None)
	last := c.Push(make([]byte, 32), false, first)
	middle := c.Push(make([]byte, 32), false, first)
	require.NoError(t, c.Validate())

	require.Equal(t, middle, c.Node(first).Next)
	require.Equal(t, last, c.Node(middle).Next)
	require.Equal(t, middle, c.Node(last).Prev)
}

func TestChainHeaderMatchesTable(t *testing.T) {
	var c chain.Chain

	first := c.Push(make([]byte, 48), false, chain.None)
	second := c.Push(make([]byte, 48), false, first)
	c.SetUsed(second, 17)

	prev, next, used := chain.ReadHeader(c.Node(second).Mem)
	require.Equal(t, first, prev)
	require.Equal(t, chain.None, next)
	require.Equal(t, 17, used)
	require.Equal(t, 17, c.Used(second))
	require.NoError(t, c.Validate())

	c.Node(second).Mem[16] = 3
	require.Error(t, c.Validate())
}

func TestChainReset(t *testing.T) {
	var c chain.Chain
	c.Push(make([]byte, 32), false, chain.None)
	c.Reset()

	require.Equal(t, 0, c.Len())
	require.NoError(t, c.Validate())
	c.Forward(func(int, *chain.Node) bool {
		t.Fail()
		return true
	})
}
