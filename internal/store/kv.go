// Package store is the local bbolt database holding the definition cache and
// the manifest history. Every value is stored zstd-compressed behind the
// BLAKE3 digest of its plain content, and verified on read.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// Buckets
var (
	BucketDefinitions = []byte("definitions") // cache key -> definition record
	BucketManifests   = []byte("manifests")   // generation timestamp -> manifest record
)

var (
	ErrNotFound = errors.New("not found")
	ErrCorrupt  = errors.New("corrupt record")
)

// ManifestRecord describes one stored manifest.
type ManifestRecord struct {
	ID     string
	Digest Digest
	Size   int
}

type DB struct{ *bbolt.DB }

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// Ensure buckets exist
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{BucketDefinitions, BucketManifests} {
			if _, e := tx.CreateBucketIfNotExists(name); e != nil {
				return e
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func (db *DB) Close() error { return db.DB.Close() }

// PutDefinition caches a definition document under key.
func (db *DB) PutDefinition(key string, data []byte) error {
	record, _, err := encodeRecord(data)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketDefinitions).Put([]byte(key), record)
	})
}

// GetDefinition returns the cached definition document stored under key.
func (db *DB) GetDefinition(key string) ([]byte, error) {
	var data []byte
	err := db.View(func(tx *bbolt.Tx) error {
		record := tx.Bucket(BucketDefinitions).Get([]byte(key))
		if record == nil {
			return fmt.Errorf("definition %q: %w", key, ErrNotFound)
		}
		plain, _, err := decodeRecord(record)
		if err != nil {
			return fmt.Errorf("definition %q: %w", key, err)
		}
		data = plain
		return nil
	})
	return data, err
}

// PutManifest stores a manifest under id, normally its generation timestamp
// so that ids sort chronologically.
func (db *DB) PutManifest(id string, data []byte) (Digest, error) {
	record, digest, err := encodeRecord(data)
	if err != nil {
		return Digest{}, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketManifests).Put([]byte(id), record)
	})
	return digest, err
}

// GetManifest returns the manifest stored under id.
func (db *DB) GetManifest(id string) ([]byte, Digest, error) {
	var (
		data   []byte
		digest Digest
	)
	err := db.View(func(tx *bbolt.Tx) error {
		record := tx.Bucket(BucketManifests).Get([]byte(id))
		if record == nil {
			return fmt.Errorf("manifest %q: %w", id, ErrNotFound)
		}
		plain, d, err := decodeRecord(record)
		if err != nil {
			return fmt.Errorf("manifest %q: %w", id, err)
		}
		data, digest = plain, d
		return nil
	})
	return data, digest, err
}

// LatestManifest returns the id of the most recent manifest.
func (db *DB) LatestManifest() (string, error) {
	var id string
	err := db.View(func(tx *bbolt.Tx) error {
		k, _ := tx.Bucket(BucketManifests).Cursor().Last()
		if k == nil {
			return fmt.Errorf("latest manifest: %w", ErrNotFound)
		}
		id = string(k)
		return nil
	})
	return id, err
}

// ListManifests returns all stored manifests, oldest first. Digests are read
// from the record header without decompressing.
func (db *DB) ListManifests() ([]ManifestRecord, error) {
	var out []ManifestRecord
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketManifests).ForEach(func(k, v []byte) error {
			rec := ManifestRecord{ID: string(k), Size: len(v)}
			if len(v) >= digestSize {
				copy(rec.Digest[:], v[:digestSize])
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

// PruneManifests deletes all but the newest keep manifests and returns how
// many were removed.
func (db *DB) PruneManifests(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("invalid keep count %d", keep)
	}
	removed := 0
	err := db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(BucketManifests)
		var ids [][]byte
		if err := b.ForEach(func(k, _ []byte) error {
			ids = append(ids, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}
		if len(ids) <= keep {
			return nil
		}
		ids = ids[:len(ids)-keep]
		for _, id := range ids {
			if err := b.Delete(id); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
