package storage

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/iconvault/iconvault/internal/errors"
)

// KeyValue is the key-value storage backend, used when no workspace
// directory is available or when explicitly selected. Resources are stored
// under keys namespaced as "{area}/{name}". Badger is byte-safe, so binary
// content needs no string encoding.
type KeyValue struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewKeyValue opens the Badger database at path.
func NewKeyValue(path string, logger *slog.Logger) (*KeyValue, error) {
	logger = ensureLogger(logger)

	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Storage("open key-value store").WithCause(err)
	}

	logger.Info("key-value store opened", "path", path)
	return &KeyValue{db: db, logger: logger}, nil
}

func key(area Area, name string) []byte {
	return []byte(string(area) + "/" + name)
}

// Save stores content under {area}/{name}.
func (kv *KeyValue) Save(ctx context.Context, area Area, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(area, name); err != nil {
		return err
	}

	err := kv.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(area, name), content)
	})
	if err != nil {
		kv.logger.Error("key-value write failed", "area", area, "name", name, "error", err)
		return errors.Storagef("write %s/%s", area, name).WithCause(err)
	}
	return nil
}

// Read returns the stored content, or (nil, nil) when the key is absent.
func (kv *KeyValue) Read(ctx context.Context, area Area, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName(area, name); err != nil {
		return nil, err
	}

	var content []byte
	err := kv.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(area, name))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		kv.logger.Error("key-value read failed", "area", area, "name", name, "error", err)
		return nil, errors.Storagef("read %s/%s", area, name).WithCause(err)
	}
	return content, nil
}

// Locate always returns "": key-value entries have no addressable location.
func (kv *KeyValue) Locate(ctx context.Context, area Area, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(area, name); err != nil {
		return "", err
	}
	return "", nil
}

// Delete removes the key. Absent keys are not an error.
func (kv *KeyValue) Delete(ctx context.Context, area Area, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(area, name); err != nil {
		return err
	}

	err := kv.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(area, name))
	})
	if err != nil {
		kv.logger.Error("key-value delete failed", "area", area, "name", name, "error", err)
		return errors.Storagef("delete %s/%s", area, name).WithCause(err)
	}
	return nil
}

// List returns every name stored under the area prefix.
func (kv *KeyValue) List(ctx context.Context, area Area) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !area.Valid() {
		return nil, errors.Validationf("invalid storage area %q", area)
	}

	prefix := string(area) + "/"
	var names []string
	err := kv.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), prefix))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Storagef("list %s", area).WithCause(err)
	}
	return names, nil
}

// Close gracefully closes the database.
func (kv *KeyValue) Close() error {
	kv.logger.Info("closing key-value store")
	return kv.db.Close()
}
