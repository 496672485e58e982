package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.etcd.io/bbolt"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSum(t *testing.T) {
	d1 := Sum([]byte("hello world"))
	d2 := Sum([]byte("hello world"))
	if d1 != d2 {
		t.Error("Same data should produce same digest")
	}
	if d1 == Sum([]byte("hello world!")) {
		t.Error("Different data should produce different digests")
	}
	if len(d1.String()) != 64 || len(d1.Short()) != 12 || !strings.HasPrefix(d1.String(), d1.Short()) {
		t.Errorf("Unexpected digest rendering %s / %s", d1, d1.Short())
	}
}

func TestRecordRoundTrip(t *testing.T) {
	plain := bytes.Repeat([]byte(`{"version":"1.0.0"}`), 64)
	record, digest, err := encodeRecord(plain)
	if err != nil {
		t.Fatalf("encodeRecord failed: %v", err)
	}
	if len(record) >= len(plain) {
		t.Errorf("Expected repetitive content to compress, %d >= %d", len(record), len(plain))
	}

	got, gotDigest, err := decodeRecord(record)
	if err != nil {
		t.Fatalf("decodeRecord failed: %v", err)
	}
	if !bytes.Equal(got, plain) || gotDigest != digest {
		t.Error("Round trip mismatch")
	}
}

func TestRecordCorruption(t *testing.T) {
	record, _, err := encodeRecord([]byte("definition"))
	if err != nil {
		t.Fatalf("encodeRecord failed: %v", err)
	}

	tampered := append([]byte(nil), record...)
	tampered[0] ^= 0xff
	if _, _, err := decodeRecord(tampered); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt for digest mismatch, got %v", err)
	}

	if _, _, err := decodeRecord(record[:10]); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt for short record, got %v", err)
	}
}

func TestDefinitionCache(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetDefinition("helix_manifest_cache"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty cache, got %v", err)
	}

	data := []byte(`{"version":"2.1.0"}`)
	if err := db.PutDefinition("helix_manifest_cache", data); err != nil {
		t.Fatalf("PutDefinition failed: %v", err)
	}
	got, err := db.GetDefinition("helix_manifest_cache")
	if err != nil {
		t.Fatalf("GetDefinition failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Expected %s, got %s", data, got)
	}
}

func TestDefinitionCacheDetectsCorruption(t *testing.T) {
	db := openTestDB(t)
	if err := db.PutDefinition("k", []byte("payload")); err != nil {
		t.Fatalf("PutDefinition failed: %v", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketDefinitions).Put([]byte("k"), []byte("garbage"))
	}); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	if _, err := db.GetDefinition("k"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Expected ErrCorrupt, got %v", err)
	}
}

func TestManifestHistory(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.LatestManifest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty history, got %v", err)
	}

	ids := []string{
		"2026-01-02T10:00:00.000Z",
		"2026-01-01T10:00:00.000Z",
		"2026-01-03T10:00:00.000Z",
	}
	digests := make(map[string]Digest)
	for _, id := range ids {
		d, err := db.PutManifest(id, []byte(`{"generatedAt":"`+id+`"}`))
		if err != nil {
			t.Fatalf("PutManifest failed: %v", err)
		}
		digests[id] = d
	}

	latest, err := db.LatestManifest()
	if err != nil {
		t.Fatalf("LatestManifest failed: %v", err)
	}
	if latest != "2026-01-03T10:00:00.000Z" {
		t.Errorf("Expected newest id, got %s", latest)
	}

	records, err := db.ListManifests()
	if err != nil {
		t.Fatalf("ListManifests failed: %v", err)
	}
	if len(records) != 3 || records[0].ID != "2026-01-01T10:00:00.000Z" {
		t.Fatalf("Expected chronological listing, got %+v", records)
	}
	for _, r := range records {
		if r.Digest != digests[r.ID] {
			t.Errorf("Digest mismatch for %s", r.ID)
		}
	}

	data, digest, err := db.GetManifest(ids[0])
	if err != nil {
		t.Fatalf("GetManifest failed: %v", err)
	}
	if !strings.Contains(string(data), ids[0]) || digest != digests[ids[0]] {
		t.Errorf("Unexpected manifest %s", data)
	}

	removed, err := db.PruneManifests(1)
	if err != nil {
		t.Fatalf("PruneManifests failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	records, _ = db.ListManifests()
	if len(records) != 1 || records[0].ID != latest {
		t.Errorf("Expected only the newest manifest to remain, got %+v", records)
	}
	if _, err := db.PruneManifests(-1); err == nil {
		t.Error("Expected negative keep count to fail")
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.PutDefinition("k", []byte("v")); err != nil {
		t.Fatalf("PutDefinition failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer db.Close()
	got, err := db.GetDefinition("k")
	if err != nil || string(got) != "v" {
		t.Errorf("Expected persisted value, got %q, %v", got, err)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	if _, err := m.GetDefinition("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := m.PutDefinition("k", []byte("v")); err != nil {
		t.Fatalf("PutDefinition failed: %v", err)
	}
	if got, err := m.GetDefinition("k"); err != nil || string(got) != "v" {
		t.Errorf("Expected v, got %q, %v", got, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.PutManifest(string(rune('a'+i)), []byte("m")); err != nil {
				t.Errorf("Concurrent PutManifest failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	ids := m.ManifestIDs()
	if len(ids) != 8 || ids[0] != "a" || ids[7] != "h" {
		t.Errorf("Unexpected ids %v", ids)
	}
	if _, _, err := m.GetManifest("zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
