package pgml

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm/schema"
)

// entry is the registered embedding metadata of one model type. It is
// written once by Register and only read afterwards.
type entry struct {
	modelType reflect.Type
	columns   []Column
}

func (e *entry) column(name string) (Column, bool) {
	for _, col := range e.columns {
		if col.name == name {
			return col, true
		}
	}
	return Column{}, false
}

// columnFor matches a schema field to a column by Go or database name.
func (e *entry) columnFor(field *schema.Field) (Column, bool) {
	for _, col := range e.columns {
		if col.name == field.Name || (field.DBName != "" && col.name == field.DBName) {
			return col, true
		}
	}
	return Column{}, false
}

var registry = struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*entry
}{
	entries: map[reflect.Type]*entry{},
}

func lookup(t reflect.Type) (*entry, bool) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	e, ok := registry.entries[t]
	return e, ok
}

// Model is the registration handle of a model type with embedding columns.
// It provides the search operations for that type; saving is handled by
// the Plugin once the model is registered.
type Model[T any] struct {
	entry *entry
}

// Register declares the embedding columns of model type T. Each type can be
// registered once, normally from a package-level variable.
func Register[T any](columns ...Column) (*Model[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("pgml: register %s: model must be a struct", t)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, t)
	}

	seen := make(map[string]bool, len(columns))
	cols := make([]Column, len(columns))
	for i, col := range columns {
		if seen[col.name] {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, t, col.name)
		}
		seen[col.name] = true
		cols[i] = col
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.entries[t]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, t)
	}
	e := &entry{modelType: t, columns: cols}
	registry.entries[t] = e
	return &Model[T]{entry: e}, nil
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](columns ...Column) *Model[T] {
	m, err := Register[T](columns...)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup returns the handle of a previously registered model type.
func Lookup[T any]() (*Model[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	e, ok := lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, t)
	}
	return &Model[T]{entry: e}, nil
}

// Columns returns the registered columns in declaration order.
func (m *Model[T]) Columns() []Column {
	cols := make([]Column, len(m.entry.columns))
	copy(cols, m.entry.columns)
	return cols
}

// Column returns the column registered under name.
func (m *Model[T]) Column(name string) (Column, bool) {
	return m.entry.column(name)
}
