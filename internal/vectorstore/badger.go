package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	badgerDocPrefix = "doc:"
	badgerBuildKey  = "meta:build"
)

func badgerDocKey(seq int) []byte {
	return []byte(fmt.Sprintf("%s%08d", badgerDocPrefix, seq))
}

// BadgerBackend 本地目录存储。服务进程以只读方式打开，构建进程以读写方式打开，
// 目录锁保证两者不会同时持有写权限
type BadgerBackend struct {
	path     string
	readOnly bool
	logger   zerolog.Logger

	mu sync.Mutex
	db *badger.DB
}

// OpenBadger 打开目录。只读模式下目录不存在时延迟到第一次读取再打开
func OpenBadger(path string, readOnly bool, logger zerolog.Logger) (*BadgerBackend, error) {
	b := &BadgerBackend{path: path, readOnly: readOnly, logger: logger}
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			logger.Warn().Str("path", path).Msg("[Index] 索引目录不存在，等待构建")
			return b, nil
		}
	}
	if _, err := b.open(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BadgerBackend) open() (*badger.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db != nil {
		return b.db, nil
	}

	opts := badger.DefaultOptions(b.path).
		WithReadOnly(b.readOnly).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", b.path, err)
	}
	b.db = db
	return db, nil
}

// Name 实现 Backend
func (b *BadgerBackend) Name() string { return "badger" }

type badgerBuildMarker struct {
	Count int `json:"count"`
}

// Replace 实现 Backend：DropAll -> 批量写入文档 -> 最后写入构建标记
func (b *BadgerBackend) Replace(ctx context.Context, records []Record) error {
	if b.readOnly {
		return ErrReadOnly
	}
	db, err := b.open()
	if err != nil {
		return err
	}

	if err := db.DropAll(); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", r.Seq, err)
		}
		if err := wb.Set(badgerDocKey(r.Seq), data); err != nil {
			return fmt.Errorf("write record %d: %w", r.Seq, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	marker, err := json.Marshal(badgerBuildMarker{Count: len(records)})
	if err != nil {
		return err
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerBuildKey), marker)
	})
}

// Load 实现 Backend
func (b *BadgerBackend) Load(ctx context.Context) ([]Record, error) {
	db, err := b.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	var records []Record
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerBuildKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: build marker missing", ErrIndexUnavailable)
		}
		if err != nil {
			return err
		}

		var marker badgerBuildMarker
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &marker)
		}); err != nil {
			return fmt.Errorf("%w: bad build marker: %v", ErrIndexUnavailable, err)
		}

		records = make([]Record, 0, marker.Count)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerDocPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("%w: corrupt record %s: %v", ErrIndexUnavailable, it.Item().Key(), err)
			}
			records = append(records, r)
		}

		if len(records) != marker.Count {
			return fmt.Errorf("%w: expected %d records, found %d", ErrIndexUnavailable, marker.Count, len(records))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close 实现 Backend
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// String 便于日志输出
func (b *BadgerBackend) String() string {
	return "badger(" + b.path + ", readonly=" + strconv.FormatBool(b.readOnly) + ")"
}
