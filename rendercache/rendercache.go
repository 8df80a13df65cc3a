// Package rendercache remembers finished images so an unchanged render can
// be skipped.
package rendercache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/dgraph-io/badger"
	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/xerrors"

	"whitted/rasterimage"
)

var keyPrefix = []byte("raster/")

// Key identifies one render: a digest over everything that can change its
// pixels.
type Key uint64

// KeyOf digests parts in order.  Each part is length-prefixed, so moving
// bytes from one part to the next changes the key.
func KeyOf(parts ...[]byte) Key {
	d := xxhash.New()
	lenBytes := make([]byte, 8)
	for _, p := range parts {
		binary.BigEndian.PutUint64(lenBytes, uint64(len(p)))
		d.Write(lenBytes)
		d.Write(p)
	}
	return Key(d.Sum64())
}

func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

func (k Key) dbKey() []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], uint64(k))
	return key
}

// glogLogger routes badger's logging through glog.
type glogLogger struct{}

func (glogLogger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, fmt.Sprintf(format, args...))
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(1, fmt.Sprintf(format, args...))
}

func (glogLogger) Infof(format string, args ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

func (glogLogger) Debugf(format string, args ...interface{}) {
	if glog.V(3) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

type Cache struct {
	DB *badger.DB
}

// Open opens or creates the cache stored in dir.
func Open(dir string) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(glogLogger{}))
	if err != nil {
		return nil, xerrors.Errorf("while opening badger kv dir: %w", err)
	}
	return &Cache{DB: db}, nil
}

func (c *Cache) Close() error {
	if err := c.DB.Close(); err != nil {
		return xerrors.Errorf("while closing database: %w", err)
	}
	return nil
}

// Get returns the cached image for k.  A miss is reported by found=false
// with a nil error.
func (c *Cache) Get(ctx context.Context, k Key) (im *rasterimage.Image, found bool, err error) {
	tracer := otel.Tracer("whitted/rendercache")
	var span trace.Span
	_, span = tracer.Start(ctx, "Cache.Get")
	defer span.End()

	span.SetAttributes(attribute.String("key", k.String()))

	var val []byte
	err = c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k.dbKey())
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		span.SetAttributes(attribute.Bool("hit", false))
		span.SetStatus(codes.Ok, "")
		return nil, false, nil
	}
	if err != nil {
		err := xerrors.Errorf("while reading cache entry %v: %w", k, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}

	im, err = rasterimage.Read(bytes.NewReader(val))
	if err != nil {
		err := xerrors.Errorf("while decoding cache entry %v: %w", k, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}

	span.SetAttributes(attribute.Bool("hit", true))
	span.SetStatus(codes.Ok, "")
	return im, true, nil
}

// Put stores im under k, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, k Key, im *rasterimage.Image) error {
	tracer := otel.Tracer("whitted/rendercache")
	var span trace.Span
	_, span = tracer.Start(ctx, "Cache.Put")
	defer span.End()

	span.SetAttributes(attribute.String("key", k.String()))

	buf := &bytes.Buffer{}
	if err := rasterimage.Write(im, buf); err != nil {
		return xerrors.Errorf("while encoding image: %w", err)
	}

	err := c.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(k.dbKey(), buf.Bytes())
	})
	if err != nil {
		err := xerrors.Errorf("while writing cache entry %v: %w", k, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
