package storage

import (
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func TestBoltStoreStoresAndExpiresRecords(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		RecordTTL:       time.Minute,
		CleanupInterval: time.Hour,
	}

	storeRaw, err := openBolt(filepath.Join(dir, "lookups.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	key := Key("dns", "example.com")
	if _, found, err := store.Get(key); err != nil || found {
		t.Fatalf("expected missing record, found=%v err=%v", found, err)
	}

	if err := store.Put(key, Record{Action: "dns", Query: "example.com", StatusCode: 200, Body: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, found, err := store.Get(key)
	if err != nil || !found {
		t.Fatalf("expected stored record, found=%v err=%v", found, err)
	}
	if rec.StatusCode != 200 || string(rec.Body) != `{"a":1}` {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !rec.FetchedAt.Equal(now) {
		t.Fatalf("expected FetchedAt defaulted to now, got %v", rec.FetchedAt)
	}

	now = now.Add(2 * time.Minute)
	if _, found, err := store.Get(key); err != nil || found {
		t.Fatalf("expected record to expire, found=%v err=%v", found, err)
	}
}

func TestBoltStoreCleanupSweepsExpired(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "lookups.db"), Options{
		RecordTTL:       time.Minute,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }
	store.lastCleanup.Store(now.Unix())

	for _, q := range []string{"a.com", "b.com"} {
		if err := store.Put(Key("whois", q), Record{Action: "whois", Query: q}); err != nil {
			t.Fatalf("Put %s: %v", q, err)
		}
	}

	now = now.Add(5 * time.Minute)
	if _, _, err := store.Get(Key("whois", "c.com")); err != nil {
		t.Fatalf("Get: %v", err)
	}

	var remaining int
	if err := store.db.View(func(tx *bolt.Tx) error {
		remaining = tx.Bucket([]byte(lookupBucket)).Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected sweep to remove expired records, %d remain", remaining)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Put("x", Record{}); err != nil {
		t.Fatalf("noop store Put: %v", err)
	}
	if _, found, _ := store.Get("x"); found {
		t.Fatalf("noop store should never report records")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
