package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Dan9191/advance-service/internal/models"
)

type memoryStore struct {
	mu           sync.RWMutex
	accounts     map[int64]*models.Account
	transactions []models.Transaction
}

// NewMemoryStore constructs an in-memory store for tests and dry runs.
func NewMemoryStore() Store {
	return &memoryStore{accounts: make(map[int64]*models.Account)}
}

func (s *memoryStore) CreateAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("account %d: %w", account.ID, ErrAccountExists)
	}
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *memoryStore) GetAccount(_ context.Context, id int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}
	return account.Clone(), nil
}

func (s *memoryStore) UpdateAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *memoryStore) ListAccounts(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (s *memoryStore) DeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}
	delete(s.accounts, id)
	return nil
}

func (s *memoryStore) AddTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = int64(len(s.transactions) + 1)
	s.transactions = append(s.transactions, *t)
	return nil
}

func (s *memoryStore) ListTransactions(_ context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Transaction(nil), s.transactions...), nil
}
