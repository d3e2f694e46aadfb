package store

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"shiftdb/pkg/logger"
)

// counterMergerName identifies the merge operator; it is persisted into the
// DB manifest, so it must never change once a store has been written.
const counterMergerName = "shiftdb.counter"

// Pebble is a Store over a single Pebble directory. Handles are opened once
// at process start and held for the process lifetime; there is no
// per-request acquisition.
type Pebble struct {
	db   *pebble.DB
	path string
}

// Open opens (or creates) a Pebble database at path. The counter merge
// operator is registered so Increment maps onto Pebble's native merge,
// avoiding read-modify-write on counter keys.
func Open(path string) (*Pebble, error) {
	opts := &pebble.Options{
		Merger: &pebble.Merger{
			Name:  counterMergerName,
			Merge: counterMerge,
		},
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		logger.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	logger.Info("pebble_opened", zap.String("path", path))
	return &Pebble{db: db, path: path}, nil
}

// Path returns the directory this store was opened at.
func (p *Pebble) Path() string { return p.path }

func (p *Pebble) Close() error {
	if p.db == nil {
		return nil
	}
	if err := p.db.Close(); err != nil {
		return err
	}
	p.db = nil
	logger.Info("pebble_closed", zap.String("path", p.path))
	return nil
}

func (p *Pebble) Get(key string) ([]byte, error) {
	v, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, nil
}

func (p *Pebble) Put(key string, value []byte) error {
	if err := p.db.Set([]byte(key), value, pebble.Sync); err != nil {
		logger.Error("pebble_put_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (p *Pebble) Delete(key string) error {
	if err := p.db.Delete([]byte(key), pebble.Sync); err != nil {
		logger.Error("pebble_delete_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (p *Pebble) Scan(prefix string) ([]KV, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	pfx := []byte(prefix)
	var out []KV
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, KV{
			Key:   string(iter.Key()),
			Value: append([]byte(nil), iter.Value()...),
		})
	}
	return out, iter.Error()
}

func (p *Pebble) Increment(key string, delta int64) error {
	operand := []byte(strconv.FormatInt(delta, 10))
	if err := p.db.Merge([]byte(key), operand, pebble.Sync); err != nil {
		logger.Error("pebble_increment_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (p *Pebble) Count(prefix string) (int, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	pfx := []byte(prefix)
	n := 0
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		n++
	}
	return n, iter.Error()
}

// counterMerge accumulates decimal int64 operands. Counter values stay
// human-readable under inspection tools at the cost of a parse per merge.
func counterMerge(key, value []byte) (pebble.ValueMerger, error) {
	m := &counterMerger{}
	if err := m.MergeNewer(value); err != nil {
		return nil, fmt.Errorf("counter merge at %q: %w", key, err)
	}
	return m, nil
}

type counterMerger struct {
	sum int64
}

func (m *counterMerger) MergeNewer(value []byte) error {
	n, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return err
	}
	m.sum += n
	return nil
}

func (m *counterMerger) MergeOlder(value []byte) error {
	return m.MergeNewer(value)
}

func (m *counterMerger) Finish(includesBase bool) ([]byte, io.Closer, error) {
	return []byte(strconv.FormatInt(m.sum, 10)), nil, nil
}
