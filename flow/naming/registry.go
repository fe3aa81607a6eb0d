package naming

import "strconv"

// Registry maps names to values. A name that is already taken is registered
// with a numeric suffix: "x", "x-1", "x-2", and so on.
type Registry[T any] struct {
	entries map[string]T
	order   []string
}

// NewRegistry creates an empty Registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
	}
}

// Register stores value under the first free variant of name and returns the
// name that was actually used.
func (r *Registry[T]) Register(name string, value T) string {
	key := name
	for i := 1; r.has(key); i++ {
		key = name + "-" + strconv.Itoa(i)
	}

	r.entries[key] = value
	r.order = append(r.order, key)

	return key
}

// Lookup returns the value registered under exactly this name.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	v, found := r.entries[name]
	return v, found
}

// Names returns the registered names in registration order.
func (r *Registry[T]) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Len returns the number of registered names.
func (r *Registry[T]) Len() int {
	return len(r.order)
}

func (r *Registry[T]) has(name string) bool {
	_, found := r.entries[name]
	return found
}
