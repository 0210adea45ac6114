package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestKV(t *testing.T) *KV {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

type payload struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func TestGetAbsentKey(t *testing.T) {
	kv := setupTestKV(t)
	var out []payload
	ok, err := kv.Get(context.Background(), "nothing", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected absence marker for missing key")
	}
	if out != nil {
		t.Fatalf("dest should be untouched, got %v", out)
	}
}

func TestSetGetRoundtrip(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()
	in := []payload{{Name: "Flan", Price: decimal.RequireFromString("2000")}, {Name: "Brownie", Price: decimal.RequireFromString("1500.50")}}
	if err := kv.Set(ctx, "products", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out []payload
	ok, err := kv.Get(ctx, "products", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out) != 2 || out[0].Name != "Flan" {
		t.Fatalf("unexpected roundtrip: %+v", out)
	}
	if !out[1].Price.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("decimal drifted through storage: %s", out[1].Price)
	}
}

func TestSetOverwrites(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()
	if err := kv.Set(ctx, "k", []int{1, 2, 3}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "k", []int{9}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	var out []int
	if _, err := kv.Get(ctx, "k", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(out) != 1 || out[0] != 9 {
		t.Fatalf("expected full overwrite, got %v", out)
	}
}

func TestRemove(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()
	if err := kv.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	var out string
	ok, err := kv.Get(ctx, "k", &out)
	if err != nil || ok {
		t.Fatalf("expected key gone, ok=%v err=%v", ok, err)
	}
	// Removing an absent key is not an error.
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestUpdateCommitsAsUnit(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()
	err := kv.Update(ctx, func(tx *KV) error {
		if err := tx.Set(ctx, "a", 1); err != nil {
			return err
		}
		return tx.Set(ctx, "b", 2)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	var a, b int
	if ok, _ := kv.Get(ctx, "a", &a); !ok || a != 1 {
		t.Fatalf("expected a committed")
	}
	if ok, _ := kv.Get(ctx, "b", &b); !ok || b != 2 {
		t.Fatalf("expected b committed")
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()
	if err := kv.Set(ctx, "a", 1); err != nil {
		t.Fatalf("seed: %v", err)
	}
	boom := errors.New("boom")
	err := kv.Update(ctx, func(tx *KV) error {
		if err := tx.Set(ctx, "a", 99); err != nil {
			return err
		}
		if err := tx.Remove(ctx, "a"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var a int
	ok, err := kv.Get(ctx, "a", &a)
	if err != nil || !ok || a != 1 {
		t.Fatalf("expected rollback to prior value, ok=%v a=%d err=%v", ok, a, err)
	}
}

func TestDecodeErrorIsStorageError(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()
	if err := kv.Set(ctx, "k", "not a list"); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out []int
	_, err := kv.Get(ctx, "k", &out)
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if se.Op != "decode" || se.Key != "k" {
		t.Fatalf("unexpected error fields: %+v", se)
	}
}
