package eventqueue

import "reflect"

// Callback is an event that runs itself. Every queue has a handler for it
// registered at construction, which SetHandler may replace.
type Callback func()

var callbackType = reflect.TypeFor[Callback]()

func runCallback(event any) {
	if fn := event.(Callback); fn != nil {
		fn()
	}
}

// Value is an event carrying its own copy of a payload.
type Value[T any] struct {
	data T
}

// NewValue returns an event holding data.
func NewValue[T any](data T) *Value[T] {
	return &Value[T]{data: data}
}

// Ref returns a pointer to the held payload.
func (v *Value[T]) Ref() *T {
	return &v.data
}

// Copy returns a copy of the held payload.
func (v *Value[T]) Copy() T {
	return v.data
}

// Shared is an event carrying a payload shared with the producer.
// Changes made through Ref are visible to every holder of the pointer.
type Shared[T any] struct {
	data *T
}

// NewShared returns an event sharing data.
func NewShared[T any](data *T) *Shared[T] {
	return &Shared[T]{data: data}
}

// Ref returns the shared pointer.
func (s *Shared[T]) Ref() *T {
	return s.data
}

// Copy returns a copy of the shared payload. It panics if the pointer is nil.
func (s *Shared[T]) Copy() T {
	return *s.data
}
