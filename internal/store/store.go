// Package store keeps processed contracts for the lifetime of the process.
package store

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

// ContractStore is an in-memory, concurrency-safe contract list.
type ContractStore struct {
	mu           sync.RWMutex
	contracts    map[uuid.UUID]entity.Contract
	maxContracts int // 0 = unlimited
	logger       *slog.Logger
}

func NewContractStore(maxContracts int, logger *slog.Logger) *ContractStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractStore{
		contracts:    make(map[uuid.UUID]entity.Contract),
		maxContracts: max(maxContracts, 0),
		logger:       logger,
	}
}

// Save stores contracts and returns any older ones evicted to stay within
// maxContracts. The caller owns cleanup of evicted storage objects.
func (s *ContractStore) Save(contracts ...entity.Contract) []entity.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range contracts {
		s.contracts[c.ID] = c
	}
	return s.evictOldest()
}

func (s *ContractStore) Get(id uuid.UUID) (entity.Contract, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[id]
	return c, ok
}

// List returns every contract, oldest upload first.
func (s *ContractStore) List() []entity.Contract {
	s.mu.RLock()
	out := make([]entity.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sortByUpload(out)
	return out
}

// Delete removes and returns the contract, if present.
func (s *ContractStore) Delete(id uuid.UUID) (entity.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if ok {
		delete(s.contracts, id)
	}
	return c, ok
}

func (s *ContractStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}

// evictOldest drops and returns the oldest contracts beyond maxContracts. Caller holds the lock.
func (s *ContractStore) evictOldest() []entity.Contract {
	if s.maxContracts <= 0 || len(s.contracts) <= s.maxContracts {
		return nil
	}
	all := make([]entity.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		all = append(all, c)
	}
	sortByUpload(all)

	evicted := all[:len(all)-s.maxContracts]
	for _, c := range evicted {
		s.logger.Info("store.evict", "contract_id", c.ID, "uploaded_at", c.UploadedAt)
		delete(s.contracts, c.ID)
	}
	return evicted
}

// sortByUpload orders by upload time; v7 ids break ties in creation order.
func sortByUpload(cs []entity.Contract) {
	slices.SortFunc(cs, func(a, b entity.Contract) int {
		if c := a.UploadedAt.Compare(b.UploadedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}
