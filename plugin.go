package pgml

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	pluginName   = "pgml"
	callbackName = "pgml:embed"
)

var vectorType = reflect.TypeOf(Vector{})

// saveMode classifies a save statement.
type saveMode int

const (
	modeInsert saveMode = iota
	modeFullUpdate
	modePartialUpdate
)

// String returns the mode name used in logs.
func (m saveMode) String() string {
	switch m {
	case modeInsert:
		return "insert"
	case modeFullUpdate:
		return "full_update"
	case modePartialUpdate:
		return "partial_update"
	default:
		return "unknown"
	}
}

// includes reports whether a column with the given database name is written
// by the statement. selected comes from Statement.SelectAndOmitColumns.
func (m saveMode) includes(selected map[string]bool, dbName string) bool {
	switch m {
	case modeInsert:
		return true
	case modePartialUpdate:
		return selected[dbName]
	default:
		v, ok := selected[dbName]
		return !ok || v
	}
}

// Plugin is a gorm.Plugin that fills embedding columns on save. For every
// registered model it replaces the value of each embedding column written
// by the statement with an Embedding of the column's source field, so the
// database computes the vector in the same INSERT or UPDATE.
type Plugin struct {
	logger *slog.Logger
}

// PluginOption configures a Plugin.
type PluginOption func(*Plugin)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) PluginOption {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// NewPlugin creates a Plugin. Install it with db.Use.
func NewPlugin(opts ...PluginOption) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Name implements gorm.Plugin.
func (p *Plugin) Name() string {
	return pluginName
}

// Initialize implements gorm.Plugin. The callbacks run ahead of the default
// transaction so a failure is reported before anything is sent.
func (p *Plugin) Initialize(db *gorm.DB) error {
	err := db.Callback().Create().Before("gorm:begin_transaction").Register(callbackName, p.callback(true))
	if err != nil {
		return fmt.Errorf("register create callback: %w", err)
	}
	err = db.Callback().Update().Before("gorm:begin_transaction").Register(callbackName, p.callback(false))
	if err != nil {
		return fmt.Errorf("register update callback: %w", err)
	}
	return nil
}

func (p *Plugin) callback(create bool) func(*gorm.DB) {
	return func(db *gorm.DB) {
		stmt := db.Statement
		if db.Error != nil || stmt.Schema == nil {
			return
		}
		e, ok := lookup(stmt.Schema.ModelType)
		if !ok {
			return
		}

		selected, restricted := stmt.SelectAndOmitColumns(create, !create)
		mode := modeFullUpdate
		switch {
		case create:
			mode = modeInsert
		case restricted:
			mode = modePartialUpdate
		}

		addressableDest(stmt, e.modelType, create)
		for _, rv := range instances(stmt.Dest, e.modelType) {
			if err := p.embed(stmt, e, mode, selected, rv); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	}
}

// addressableDest replaces a struct destination passed by value with a
// pointer to a copy, so the embedding can be assigned and GORM writes it
// instead of the zero Vector. On create the copy is also the model being
// inserted.
func addressableDest(stmt *gorm.Statement, t reflect.Type, create bool) {
	rv := reflect.ValueOf(stmt.Dest)
	if rv.Kind() != reflect.Struct || rv.Type() != t {
		return
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(rv)
	stmt.Dest = ptr.Interface()

	if create && stmt.ReflectValue.IsValid() && !stmt.ReflectValue.CanAddr() && stmt.ReflectValue.Type() == t {
		stmt.Model = stmt.Dest
		stmt.ReflectValue = ptr.Elem()
	}
}

// instances returns the addressable values of type t held by dest: the
// struct itself, or every element of a slice or array.
func instances(dest any, t reflect.Type) []reflect.Value {
	rv := reflect.ValueOf(dest)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if rv.Type() == t && rv.CanAddr() {
			return []reflect.Value{rv}
		}
	case reflect.Slice, reflect.Array:
		out := make([]reflect.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if elem.Kind() == reflect.Struct && elem.Type() == t && elem.CanAddr() {
				out = append(out, elem)
			}
		}
		return out
	}
	return nil
}

func (p *Plugin) embed(stmt *gorm.Statement, e *entry, mode saveMode, selected map[string]bool, rv reflect.Value) error {
	ctx := stmt.Context
	for _, col := range e.columns {
		target := stmt.Schema.LookUpField(col.name)
		if target == nil {
			return fmt.Errorf("%w: %s.%s", ErrColumnNotFound, stmt.Schema.Name, col.name)
		}
		if target.IndirectFieldType != vectorType {
			return fmt.Errorf("%w: %s.%s has type %s", ErrNotEmbeddingColumn, stmt.Schema.Name, col.name, target.FieldType)
		}

		read, err := sourceReader(ctx, stmt.Schema, rv, col.source)
		if err != nil {
			return err
		}
		if !mode.includes(selected, target.DBName) {
			continue
		}

		vec := Pending(col.StoreEmbedding(read()))
		var value any = vec
		if target.FieldType.Kind() == reflect.Ptr {
			value = &vec
		}
		if err := target.Set(ctx, rv, value); err != nil {
			return fmt.Errorf("set %s.%s: %w", stmt.Schema.Name, col.name, err)
		}

		p.logger.DebugContext(ctx, "embedding column on save",
			"model", stmt.Schema.Name,
			"column", col.name,
			"source", col.source,
			"transformer", col.transformer,
			"mode", mode.String(),
		)
	}
	return nil
}

// sourceReader resolves name to a model field, or failing that to a method
// taking no arguments and returning one value.
func sourceReader(ctx context.Context, sch *schema.Schema, rv reflect.Value, name string) (func() any, error) {
	if field := sch.LookUpField(name); field != nil {
		return func() any {
			value, _ := field.ValueOf(ctx, rv)
			return value
		}, nil
	}

	if name != "" {
		method := rv.Addr().MethodByName(name)
		if method.IsValid() && method.Type().NumIn() == 0 && method.Type().NumOut() == 1 {
			return func() any {
				return method.Call(nil)[0].Interface()
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: `%s`", ErrSourceFieldNotFound, name)
}
