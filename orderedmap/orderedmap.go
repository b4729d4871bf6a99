package orderedmap

import (
	"github.com/iotaledger/liveevent.go/syncutils"
)

// OrderedMap provides a concurrent-safe map that remembers the insertion order of its keys.
//
// Iterating with ForEach does not hold the lock while the consumer runs, so the consumer is allowed to modify the map:
// elements that are appended during the iteration are visited, elements that are deleted before they are reached are
// skipped.
type OrderedMap[K comparable, V any] struct {
	head       *element[K, V]
	tail       *element[K, V]
	dictionary map[K]*element[K, V]
	sequence   uint64
	mutex      syncutils.RWMutex
}

// element is a single entry of the OrderedMap.
type element[K comparable, V any] struct {
	key     K
	value   V
	prev    *element[K, V]
	next    *element[K, V]
	seq     uint64
	deleted bool
}

// New returns a new *OrderedMap.
func New[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		dictionary: make(map[K]*element[K, V]),
	}
}

// Head returns the first map entry.
func (o *OrderedMap[K, V]) Head() (key K, value V, exists bool) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if o.head == nil {
		return key, value, false
	}

	return o.head.key, o.head.value, true
}

// Tail returns the last map entry.
func (o *OrderedMap[K, V]) Tail() (key K, value V, exists bool) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if o.tail == nil {
		return key, value, false
	}

	return o.tail.key, o.tail.value, true
}

// Has returns if an entry with the given key exists.
func (o *OrderedMap[K, V]) Has(key K) bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	_, has := o.dictionary[key]

	return has
}

// Get returns the value mapped to the given key if exists.
func (o *OrderedMap[K, V]) Get(key K) (value V, exists bool) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	e, exists := o.dictionary[key]
	if !exists {
		return value, false
	}

	return e.value, true
}

// Set adds a key-value pair to the map. Updating an existing key keeps its position. It returns true if the key was
// newly added.
func (o *OrderedMap[K, V]) Set(key K, value V) (added bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if existing, exists := o.dictionary[key]; exists {
		existing.value = value

		return false
	}

	o.sequence++
	newElement := &element[K, V]{
		key:   key,
		value: value,
		prev:  o.tail,
		seq:   o.sequence,
	}

	if o.tail == nil {
		o.head = newElement
	} else {
		o.tail.next = newElement
	}
	o.tail = newElement
	o.dictionary[key] = newElement

	return true
}

// Delete deletes the given key (and related value) from the map. It returns false if the key is not found.
func (o *OrderedMap[K, V]) Delete(key K) (deleted bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	e, exists := o.dictionary[key]
	if !exists {
		return false
	}

	delete(o.dictionary, key)
	e.deleted = true

	if e.prev != nil {
		e.prev.next = e.next
	} else {
		o.head = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	} else {
		o.tail = e.prev
	}

	// e.next is kept so that a running iteration that currently holds e can continue

	return true
}

// ForEach iterates through the map in insertion order and calls the consumer function for every element.
// The iteration can be aborted by returning false in the consumer.
func (o *OrderedMap[K, V]) ForEach(consumer func(key K, value V) bool) (completed bool) {
	o.mutex.RLock()
	current := o.head
	o.mutex.RUnlock()

	for current != nil {
		o.mutex.RLock()
		deleted, key, value := current.deleted, current.key, current.value
		o.mutex.RUnlock()

		if !deleted && !consumer(key, value) {
			return false
		}

		o.mutex.RLock()
		current = o.successor(current)
		o.mutex.RUnlock()
	}

	return true
}

// successor returns the element that follows the given one. Deleted elements at the end of the list lose track of
// elements that were appended after their removal, so these are looked up by their insertion sequence.
func (o *OrderedMap[K, V]) successor(e *element[K, V]) *element[K, V] {
	if e.next != nil || !e.deleted {
		return e.next
	}

	var candidate *element[K, V]
	for current := o.tail; current != nil && current.seq > e.seq; current = current.prev {
		candidate = current
	}

	return candidate
}

// Keys returns the keys of the map in insertion order.
func (o *OrderedMap[K, V]) Keys() []K {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	keys := make([]K, 0, len(o.dictionary))
	for current := o.head; current != nil; current = current.next {
		keys = append(keys, current.key)
	}

	return keys
}

// Values returns the values of the map in insertion order.
func (o *OrderedMap[K, V]) Values() []V {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	values := make([]V, 0, len(o.dictionary))
	for current := o.head; current != nil; current = current.next {
		values = append(values, current.value)
	}

	return values
}

// Clear removes all elements from the map.
func (o *OrderedMap[K, V]) Clear() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	for current := o.head; current != nil; current = current.next {
		current.deleted = true
	}

	o.head = nil
	o.tail = nil
	o.dictionary = make(map[K]*element[K, V])
}

// Size returns the amount of elements in the map.
func (o *OrderedMap[K, V]) Size() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return len(o.dictionary)
}
