package model

import (
	"sort"
)

// Entry はアンサンブルへの一回の追加を表す
type Entry struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Composition はアンサンブルの構成（候補IDの多重集合と追加時の重み）を表す
// 置換ありの前進選択では同じIDが複数回現れる
type Composition struct {
	Entries []Entry `json:"entries"`
}

// NewComposition は空の構成を作成する
func NewComposition() *Composition {
	return &Composition{}
}

// Add は追加を記録する
func (c *Composition) Add(id int, name string, weight float64) {
	c.Entries = append(c.Entries, Entry{ID: id, Name: name, Weight: weight})
}

// Weight はidの最後の追加で使われた重みを返す
func (c *Composition) Weight(id int) (float64, bool) {
	for i := len(c.Entries) - 1; i >= 0; i-- {
		if c.Entries[i].ID == id {
			return c.Entries[i].Weight, true
		}
	}
	return 0, false
}

// Remove はidの最後の追加を取り除き、その重みを返す
func (c *Composition) Remove(id int) (float64, bool) {
	for i := len(c.Entries) - 1; i >= 0; i-- {
		if c.Entries[i].ID == id {
			w := c.Entries[i].Weight
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			return w, true
		}
	}
	return 0, false
}

// Count はidが含まれる回数を返す
func (c *Composition) Count(id int) int {
	n := 0
	for _, e := range c.Entries {
		if e.ID == id {
			n++
		}
	}
	return n
}

// Len は追加の総数を返す
func (c *Composition) Len() int { return len(c.Entries) }

// Counts はIDごとの回数を返す
func (c *Composition) Counts() map[int]int {
	out := make(map[int]int)
	for _, e := range c.Entries {
		out[e.ID]++
	}
	return out
}

// IDs は含まれるIDを昇順・重複なしで返す
func (c *Composition) IDs() []int {
	counts := c.Counts()
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone はCompositionのディープコピーを作成
func (c *Composition) Clone() *Composition {
	clone := &Composition{Entries: make([]Entry, len(c.Entries))}
	copy(clone.Entries, c.Entries)
	return clone
}
