// Package memory holds an in-process store used by tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/Shihan7021/fintrack1/internal/domain/commit"
	"github.com/Shihan7021/fintrack1/internal/domain/rules"
)

// Store implements commit.Store and rules.Store in memory. The zero value
// is not usable; call New.
type Store struct {
	mu           sync.Mutex
	transactions map[string][]commit.Record
	rules        map[string][]rules.MerchantRule

	// FailEvery makes every n-th CreateTransaction call fail, for
	// exercising partial-commit paths. Zero disables it.
	FailEvery int
	FailWith  error
	calls     int
}

func New() *Store {
	return &Store{
		transactions: make(map[string][]commit.Record),
		rules:        make(map[string][]rules.MerchantRule),
	}
}

func (s *Store) CreateTransaction(_ context.Context, userID string, rec commit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.FailEvery > 0 && s.calls%s.FailEvery == 0 {
		return s.FailWith
	}
	s.transactions[userID] = append(s.transactions[userID], rec)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]commit.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]commit.Record, len(s.transactions[userID]))
	copy(out, s.transactions[userID])
	return out, nil
}

func (s *Store) SaveMerchantRule(_ context.Context, userID string, rule rules.MerchantRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[userID] = append(s.rules[userID], rule)
	return nil
}

func (s *Store) ListMerchantRules(_ context.Context, userID string) ([]rules.MerchantRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rules.MerchantRule, len(s.rules[userID]))
	copy(out, s.rules[userID])
	return out, nil
}
