package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/eds-runtime/datasheet"
	"github.com/wippyai/eds-runtime/errors"
)

// Codec is the boundary API over one type database. It holds no per-call
// state; one instance serves any number of concurrent callers as long as
// the database is not mutated underneath them.
type Codec struct {
	db  *datasheet.Database
	log *zap.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger attaches a logger for load-boundary diagnostics. The hot
// paths never log.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) {
		c.log = l
	}
}

// New creates a Codec over the given database.
func New(db *datasheet.Database, opts ...Option) *Codec {
	c := &Codec{db: db, log: Logger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Database returns the codec's type database.
func (c *Codec) Database() *datasheet.Database {
	return c.db
}

// TypeInfo is the structural summary exposed to display and routing layers.
type TypeInfo struct {
	Size   datasheet.SizeInfo
	Kind   datasheet.BasicKind
	NumSub uint32
}

// GetTypeInfo resolves the structural summary of a type.
func (c *Codec) GetTypeInfo(id datasheet.TypeId) (TypeInfo, error) {
	d, err := c.db.Resolve(id)
	if err != nil {
		return TypeInfo{}, err
	}
	return TypeInfo{Size: d.Size, Kind: d.Kind, NumSub: d.NumSub}, nil
}

// checkNative verifies the native buffer covers the type's declared extent.
// An undersized buffer is an invalid-id condition: the caller's handle does
// not match the storage it presented.
func checkNative(phase errors.Phase, d *datasheet.Descriptor, buf []byte) error {
	if len(buf) < int(d.Size.Bytes) {
		return errors.New(phase, errors.KindInvalidID).
			Detail("native buffer %d bytes, type requires %d", len(buf), d.Size.Bytes).
			Build()
	}
	return nil
}
