package store

// collection is an ordered list of entities addressed by id.
// It is not safe for concurrent use; Store holds the lock.
type collection[T any] struct {
	items []T
	id    func(T) string
}

func newCollection[T any](id func(T) string) collection[T] {
	return collection[T]{id: id}
}

func (c *collection[T]) setAll(items []T) {
	c.items = append([]T(nil), items...)
}

func (c *collection[T]) add(item T) {
	c.items = append(c.items, item)
}

func (c *collection[T]) index(id string) int {
	for i := range c.items {
		if c.id(c.items[i]) == id {
			return i
		}
	}
	return -1
}

// update applies fn to the item with id. A missing id is a no-op.
func (c *collection[T]) update(id string, fn func(*T)) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	fn(&c.items[i])
	return true
}

func (c *collection[T]) replace(id string, item T) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

func (c *collection[T]) remove(id string) bool {
	return c.removeWhere(func(it T) bool { return c.id(it) == id }) > 0
}

func (c *collection[T]) removeWhere(match func(T) bool) int {
	kept := c.items[:0]
	n := 0
	for _, it := range c.items {
		if match(it) {
			n++
			continue
		}
		kept = append(kept, it)
	}
	// Zero the tail so removed items can be collected.
	var zero T
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = zero
	}
	c.items = kept
	return n
}

func (c *collection[T]) get(id string) (T, bool) {
	i := c.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

func (c *collection[T]) all() []T {
	return append([]T{}, c.items...)
}

func (c *collection[T]) where(match func(T) bool) []T {
	out := []T{}
	for _, it := range c.items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}
