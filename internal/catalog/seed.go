package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Seed inserts a starter catalog when the store has no products yet.
// Invoked from main only when DB_SEED is set (development convenience).
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	base := []struct {
		name  string
		price int64
	}{
		{"Flan de caramelo", 2000},
		{"Tres leches", 3500},
		{"Brownie", 1500},
	}
	for _, b := range base {
		if _, err := s.Add(ctx, b.name, decimal.NewFromInt(b.price)); err != nil {
			return err
		}
	}
	return nil
}
