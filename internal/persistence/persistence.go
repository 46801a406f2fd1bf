package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/markusressel/baram/internal/telemetry"
	"github.com/markusressel/baram/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketTelemetry = "telemetry"

	// samples beyond this count are pruned oldest-first
	maxSamples = 50000
)

type Persistence interface {
	Init() error

	SaveSample(sample telemetry.Sample) error
	LoadSamples(limit int) ([]telemetry.Sample, error)
	DeleteSamples() error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveSample appends one telemetry sample to the history bucket.
// Keys are RFC3339Nano timestamps, so bucket order is chronological.
func (p persistence) SaveSample(sample telemetry.Sample) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	key := sample.Time.UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketTelemetry))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		if err = b.Put([]byte(key), data); err != nil {
			return err
		}
		return pruneOldest(b)
	})
}

func pruneOldest(b *bolt.Bucket) error {
	excess := b.Stats().KeyN + 1 - maxSamples
	if excess <= 0 {
		return nil
	}
	c := b.Cursor()
	for k, _ := c.First(); k != nil && excess > 0; k, _ = c.Next() {
		if err := b.Delete(k); err != nil {
			return err
		}
		excess--
	}
	return nil
}

// LoadSamples returns up to limit of the most recent samples in
// chronological order. limit <= 0 loads the full history.
func (p persistence) LoadSamples(limit int) ([]telemetry.Sample, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var samples []telemetry.Sample
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTelemetry))
		if b == nil {
			return os.ErrNotExist
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(samples) >= limit {
				break
			}
			var sample telemetry.Sample
			if err := json.Unmarshal(v, &sample); err != nil {
				ui.Warning("Unable to unmarshal saved telemetry sample %s: %v", string(k), err)
				continue
			}
			samples = append(samples, sample)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}

	return samples, nil
}

func (p persistence) DeleteSamples() error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTelemetry))
		if b == nil {
			// no telemetry bucket yet
			return nil
		}
		return tx.DeleteBucket([]byte(BucketTelemetry))
	})
}
