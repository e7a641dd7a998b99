package arc

import "github.com/IvanBrykalov/policycache/internal/list"

// rentry is a resident entry in the recency half. hits counts accesses since
// admission and drives promotion into the frequency half.
type rentry[K comparable, V any] struct {
	key  K
	val  V
	hits int
}

// recencyHalf is T1 plus its ghost B1: an LRU list of keys seen once
// recently, with a key-only ghost of its recent evictions. The ghost bound
// shrinks as the resident capacity grows so that |T1| + |B1| never exceeds
// the cache's total capacity.
//
// Methods are not locked; the composite cache serializes access.
type recencyHalf[K comparable, V any] struct {
	capacity  int // resident bound; this is the adaptive target p
	totalCap  int // the cache's total capacity c, fixed
	threshold int // hits needed before a resident is promotion-eligible

	ll  *list.List[rentry[K, V]]
	idx map[K]*list.Element[rentry[K, V]]

	ghost    *list.List[K]
	ghostIdx map[K]*list.Element[K]

	evictions uint64
}

func newRecencyHalf[K comparable, V any](capacity, totalCap, threshold int) *recencyHalf[K, V] {
	return &recencyHalf[K, V]{
		capacity:  capacity,
		totalCap:  totalCap,
		threshold: threshold,
		ll:        list.New[rentry[K, V]](),
		idx:       make(map[K]*list.Element[rentry[K, V]], capacity),
		ghost:     list.New[K](),
		ghostIdx:  make(map[K]*list.Element[K]),
	}
}

// put inserts or updates k→v at the MRU end. A new entry starts with one
// recorded hit. Overflow evicts the LRU resident into the ghost list.
func (h *recencyHalf[K, V]) put(k K, v V) {
	if el, ok := h.idx[k]; ok {
		el.Value.val = v
		h.ll.MoveToBack(el)
		return
	}
	if h.capacity <= 0 {
		return
	}
	if h.ll.Len() >= h.capacity {
		h.evictLRU()
	}
	h.idx[k] = h.ll.PushBack(rentry[K, V]{key: k, val: v, hits: 1})
}

// get returns the value for k, bumps its hit count, and reports whether the
// entry has reached the promotion threshold. The entry stays resident; the
// composite decides whether to take it.
func (h *recencyHalf[K, V]) get(k K) (v V, promote bool, ok bool) {
	el, found := h.idx[k]
	if !found {
		return v, false, false
	}
	h.ll.MoveToBack(el)
	el.Value.hits++
	return el.Value.val, el.Value.hits >= h.threshold, true
}

// take removes a resident entry without ghosting it and returns its value
// and accumulated hit count. Used for promotion into the frequency half.
func (h *recencyHalf[K, V]) take(k K) (v V, hits int, ok bool) {
	el, found := h.idx[k]
	if !found {
		return v, 0, false
	}
	delete(h.idx, k)
	e := h.ll.Remove(el)
	return e.val, e.hits, true
}

// remove deletes a resident entry. The key does not enter the ghost list:
// an explicit removal is not an eviction signal.
func (h *recencyHalf[K, V]) remove(k K) bool {
	el, ok := h.idx[k]
	if !ok {
		return false
	}
	delete(h.idx, k)
	h.ll.Remove(el)
	return true
}

// checkGhost removes k from the ghost list if present and reports whether
// it was there. A hit proves this half is undersized.
func (h *recencyHalf[K, V]) checkGhost(k K) bool {
	el, ok := h.ghostIdx[k]
	if !ok {
		return false
	}
	h.ghost.Remove(el)
	delete(h.ghostIdx, k)
	return true
}

// increaseCapacity grows the resident bound by one. The ghost bound shrinks
// correspondingly, so surplus ghosts are dropped.
func (h *recencyHalf[K, V]) increaseCapacity() {
	h.capacity++
	h.trimGhosts()
}

// decreaseCapacity shrinks the resident bound by one, evicting the LRU
// resident first if the half is full. Returns false at zero.
func (h *recencyHalf[K, V]) decreaseCapacity() bool {
	if h.capacity <= 0 {
		return false
	}
	if h.ll.Len() >= h.capacity {
		h.evictLRU()
	}
	h.capacity--
	return true
}

func (h *recencyHalf[K, V]) len() int { return h.ll.Len() }

func (h *recencyHalf[K, V]) purge(capacity int) {
	h.capacity = capacity
	h.ll.Init()
	h.idx = make(map[K]*list.Element[rentry[K, V]], capacity)
	h.ghost.Init()
	h.ghostIdx = make(map[K]*list.Element[K])
}

// evictLRU moves the least recently used resident into the ghost list.
func (h *recencyHalf[K, V]) evictLRU() {
	el := h.ll.Front()
	if el == nil {
		return
	}
	k := el.Value.key
	delete(h.idx, k)
	h.ll.Remove(el)
	h.evictions++
	h.pushGhost(k)
}

// ghostCap bounds B1 at totalCap - capacity, keeping |T1| + |B1| <= c.
func (h *recencyHalf[K, V]) ghostCap() int { return h.totalCap - h.capacity }

func (h *recencyHalf[K, V]) pushGhost(k K) {
	if h.ghostCap() <= 0 {
		return
	}
	if el, ok := h.ghostIdx[k]; ok {
		h.ghost.Remove(el)
	}
	for h.ghost.Len() >= h.ghostCap() {
		h.dropOldestGhost()
	}
	h.ghostIdx[k] = h.ghost.PushBack(k)
}

func (h *recencyHalf[K, V]) trimGhosts() {
	for h.ghost.Len() > h.ghostCap() {
		h.dropOldestGhost()
	}
}

func (h *recencyHalf[K, V]) dropOldestGhost() {
	el := h.ghost.Front()
	if el == nil {
		return
	}
	delete(h.ghostIdx, el.Value)
	h.ghost.Remove(el)
}
