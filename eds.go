package edsruntime

import (
	"path/filepath"
	"strings"

	"github.com/wippyai/eds-runtime/codec"
	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// Runtime couples one type database with the codec operating over it. It is
// the convenience entry point; applications that manage registration
// themselves can use the datasheet and codec packages directly.
type Runtime struct {
	db    *datasheet.Database
	codec *codec.Codec
}

// New wraps an already-populated database.
func New(db *datasheet.Database, opts ...codec.Option) *Runtime {
	return &Runtime{db: db, codec: codec.New(db, opts...)}
}

// Open loads a datasheet file and returns a runtime over it. The format is
// chosen by extension: .yaml/.yml sources are compiled from the schema
// description, anything else is read as a compiled binary datasheet.
func Open(path string, opts ...codec.Option) (*Runtime, error) {
	db := datasheet.NewDatabase()
	var comps []*datasheet.Component
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c, err := datasheet.ReadYAMLFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, path)
		}
		comps = []*datasheet.Component{c}
	default:
		cs, err := datasheet.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, path)
		}
		comps = cs
	}
	for _, c := range comps {
		if err := db.Register(c); err != nil {
			return nil, err
		}
	}
	return New(db, opts...), nil
}

// Database returns the runtime's type database.
func (r *Runtime) Database() *datasheet.Database { return r.db }

// Codec returns the codec over the runtime's database.
func (r *Runtime) Codec() *codec.Codec { return r.codec }
