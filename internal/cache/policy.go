package cache

// Policy decides which keys to evict. Implementations are called with the
// cache lock held and need no synchronization of their own.
type Policy interface {
	// Touched records a read or overwrite of an existing key.
	Touched(key string)
	// Added records a new key and returns the keys to evict.
	Added(key string) []string
	// Removed records a key dropped by the cache itself (expiry).
	Removed(key string)
	// Reset forgets every key.
	Reset()
}

type unbounded struct{}

// Unbounded never evicts.
func Unbounded() Policy { return unbounded{} }

func (unbounded) Touched(string) {}
func (unbounded) Added(string) []string { return nil }
func (unbounded) Removed(string) {}
func (unbounded) Reset() {}

// lru keeps keys in access order: front=oldest, back=newest.
type lru struct {
	max   int
	order []string
}

// LRU evicts the least recently used key once more than max keys are held.
// A max below 1 is treated as 1.
func LRU(max int) Policy {
	if max < 1 {
		max = 1
	}
	return &lru{max: max}
}

func (p *lru) Touched(key string) {
	p.remove(key)
	p.order = append(p.order, key)
}

func (p *lru) Added(key string) []string {
	p.order = append(p.order, key)
	var evicted []string
	for len(p.order) > p.max {
		evicted = append(evicted, p.order[0])
		p.order = p.order[1:]
	}
	return evicted
}

func (p *lru) Removed(key string) { p.remove(key) }

func (p *lru) Reset() { p.order = nil }

func (p *lru) remove(key string) {
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}
