package account

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotFound indicates no account is registered under the phone number.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicatePhone indicates the phone number is already registered.
	// Uniqueness is enforced here, not by callers.
	ErrDuplicatePhone = errors.New("phone number already registered")
)

// Store holds every registered account, indexed by phone number. It owns the
// collection exclusively: accounts enter through Add and leave through
// Remove, and lookups hand out the live pointer for the wallet service to
// mutate under its own operation lock.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*Account)}
}

// Restore replaces the store contents with a previously loaded account set.
// Called once at startup before any operation runs.
func (s *Store) Restore(accounts []*Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		s.accounts[a.PhoneNumber] = a
	}
}

// FindByPhone returns the account registered under phone. Matching is exact
// and case-sensitive.
func (s *Store) FindByPhone(phone string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// Add registers a new account, rejecting duplicate phone numbers.
func (s *Store) Add(a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.PhoneNumber]; exists {
		return ErrDuplicatePhone
	}
	s.accounts[a.PhoneNumber] = a
	return nil
}

// Remove deletes the account and its transaction history permanently.
func (s *Store) Remove(phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[phone]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, phone)
	return nil
}

// All returns every account ordered by phone number. The order is fixed so
// consecutive snapshots of the same state are byte-identical.
func (s *Store) All() []*Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out
}

// Len reports the number of registered accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
