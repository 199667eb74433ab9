package ds

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/15mga/kite/util"
	"github.com/stretchr/testify/assert"
)

type player struct {
	cid  int64
	name string
}

func newPlayerSet() *KSet[int64, *player] {
	return NewKSet[int64, *player](4, func(p *player) int64 {
		return p.cid
	})
}

func TestKSet(t *testing.T) {
	set := newPlayerSet()
	for i := int64(0); i < 10; i++ {
		assert.Nil(t, set.Add(&player{cid: i, name: strconv.FormatInt(i, 10)}))
	}
	assert.Equal(t, 10, set.Count())

	err := set.Add(&player{cid: 3})
	assert.NotNil(t, err)
	assert.Equal(t, util.EcExist, err.Code())
	assert.False(t, set.AddNX(&player{cid: 3}))

	p, ok := set.Del(0)
	assert.True(t, ok)
	assert.Equal(t, "0", p.name)
	assert.False(t, set.Has(0))
	assert.Equal(t, 9, set.Count())

	// 尾元素补位后索引仍然正确
	for i := int64(1); i < 10; i++ {
		p, ok := set.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i, p.cid)
	}

	_, ok = set.Del(100)
	assert.False(t, ok)

	old, exist := set.Set(&player{cid: 5, name: "five"})
	assert.True(t, exist)
	assert.Equal(t, "5", old.name)
	p, _ = set.Get(5)
	assert.Equal(t, "five", p.name)

	set.Reset()
	assert.Equal(t, 0, set.Count())
	assert.False(t, set.Has(5))
}

func TestLinkDel(t *testing.T) {
	l := NewLink[int]()
	for i := 0; i < 4; i++ {
		l.Push(i)
	}
	assert.True(t, l.Del(func(v int) bool { return v == 3 }))
	assert.True(t, l.Del(func(v int) bool { return v == 0 }))
	assert.False(t, l.Del(func(v int) bool { return v == 9 }))
	l.Push(7)
	var values []int
	l.Values(&values)
	assert.Equal(t, []int{1, 2, 7}, values)
	assert.Equal(t, uint32(3), l.Count())
}

func BenchmarkKSet(b *testing.B) {
	count := 1024 << 4
	set := NewKSet[int64, *player](count, func(p *player) int64 {
		return p.cid
	})
	players := make([]*player, 0, count)
	for i := 0; i < count; i++ {
		players = append(players, &player{cid: int64(i)})
	}
	b.Run("set add", func(b *testing.B) {
		b.ReportAllocs()
		for _, p := range players {
			_ = set.Add(p)
		}
	})
	b.Run("set del", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < count; i++ {
			set.Del(players[rand.Intn(count)].cid)
		}
	})
}
