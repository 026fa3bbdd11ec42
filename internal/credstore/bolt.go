package credstore

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const credentialsBucket = "credentials"

// BoltStore is a bbolt-backed Store. One bucket, key = normalized email,
// value = JSON-encoded Entry. Corrupted values are treated as absent, the
// same way the original treated unparseable persisted JSON.
type BoltStore struct {
	db    *bbolt.DB
	seeds map[string]Entry
	log   *zap.Logger
}

// Open opens (or creates) the credential store file at path. The provided
// seed entries are served read-only and are never written to the file.
func Open(path string, seeds []Entry, log *zap.Logger) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(credentialsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	seedMap := make(map[string]Entry, len(seeds))
	for _, s := range seeds {
		seedMap[NormalizeEmail(s.Email)] = s
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &BoltStore{db: db, seeds: seedMap, log: log}, nil
}

// Close closes the underlying bbolt file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Lookup returns the entry for the given email. Persisted entries shadow
// seed entries with the same email.
func (s *BoltStore) Lookup(email string) (*Entry, bool, error) {
	key := NormalizeEmail(email)

	var entry *Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(credentialsBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			// Corrupted value: treat as absent, never surface as an error
			s.log.Warn("discarding corrupted credential entry", zap.String("email", key), zap.Error(err))
			return nil
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if entry != nil {
		return entry, true, nil
	}

	if seed, ok := s.seeds[key]; ok {
		return &seed, true, nil
	}
	return nil, false, nil
}

// Upsert persists an entry, overwriting any existing one for the email
func (s *BoltStore) Upsert(entry Entry) error {
	entry.Email = NormalizeEmail(entry.Email)
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(credentialsBucket)).Put([]byte(entry.Email), raw)
	})
}

// Clear wipes all persisted entries. Seeds survive because they are never
// written to the bucket.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(credentialsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(credentialsBucket))
		return err
	})
}

// List returns every usable entry: persisted entries merged over the seeds,
// with persisted entries shadowing seeds on email collision.
func (s *BoltStore) List() ([]Entry, error) {
	merged := make(map[string]Entry, len(s.seeds))
	for k, v := range s.seeds {
		merged[k] = v
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(credentialsBucket)).ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				s.log.Warn("skipping corrupted credential entry", zap.String("email", string(k)), zap.Error(err))
				return nil
			}
			merged[string(k)] = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	return entries, nil
}
