package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Known collection keys. Each holds one JSON-encoded collection.
const (
	KeyProducts       = "products"
	KeyOrders         = "orders"
	KeyArchivedOrders = "archivedOrders"
)

// Entry is a row of the key-value table backing the app. Values are
// JSON documents; a write replaces the whole document for its key.
type Entry struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// StorageError wraps an underlying read/write failure with the
// operation and key it happened on. Callers surface it as a generic
// failure; the operation is considered not applied.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// KV is the persistent key-value store. There is a single logical
// namespace; each Get/Set/Remove is atomic per key, cross-key atomicity
// only through Update.
type KV struct {
	db *gorm.DB
}

// New wraps an already-opened gorm connection. Open is the usual entry
// point; New exists for tests and for transaction scoping.
func New(db *gorm.DB) *KV { return &KV{db: db} }

// Get unmarshals the value stored under key into dest. The second
// return is false when the key is absent, in which case dest is left
// untouched.
func (s *KV) Get(ctx context.Context, key string, dest any) (bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "get", Key: key, Err: err}
	}
	if err := json.Unmarshal([]byte(e.Value), dest); err != nil {
		return false, &StorageError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

// Set marshals value and fully overwrites any prior value for key.
func (s *KV) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	e := Entry{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e)
	if res.Error != nil {
		return &StorageError{Op: "set", Key: key, Err: res.Error}
	}
	return nil
}

// Remove deletes the entry for key. Removing an absent key is not an
// error.
func (s *KV) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Update runs fn inside a single database transaction. Every operation
// issued through the KV passed to fn commits or rolls back as one unit;
// archival relies on this to move orders across collections without a
// crash window.
func (s *KV) Update(ctx context.Context, fn func(tx *KV) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&KV{db: tx})
	})
}

// Ping runs a lightweight connectivity check.
func (s *KV) Ping(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}
