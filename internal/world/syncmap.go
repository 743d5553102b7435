package world

import (
	"sync"
	"sync/atomic"
)

// atomicMap is a sync.Map that also tracks its size, which sync.Map itself
// cannot report without a full Range.
type atomicMap struct {
	m sync.Map
	n atomic.Int64
}

func (am *atomicMap) Load(k any) (any, bool) {
	return am.m.Load(k)
}

func (am *atomicMap) Store(k, v any) {
	if _, loaded := am.m.Swap(k, v); !loaded {
		am.n.Add(1)
	}
}

func (am *atomicMap) LoadOrStore(k, v any) (any, bool) {
	actual, loaded := am.m.LoadOrStore(k, v)
	if !loaded {
		am.n.Add(1)
	}
	return actual, loaded
}

func (am *atomicMap) Delete(k any) {
	if _, loaded := am.m.LoadAndDelete(k); loaded {
		am.n.Add(-1)
	}
}

func (am *atomicMap) Range(f func(k, v any) bool) {
	am.m.Range(f)
}

func (am *atomicMap) Len() int {
	return int(am.n.Load())
}
