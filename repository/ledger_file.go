package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"xubot/models"

	log "github.com/sirupsen/logrus"
)

// FileLedgerStore is a JSON-file-backed ledger. The full ledger lives in
// memory; every mutation rewrites the file wholesale. A failed persist is
// logged and the in-memory state stays authoritative until the next
// successful write (best-effort durability, acceptable for play-money).
type FileLedgerStore struct {
	mu              sync.Mutex
	path            string
	startingBalance int64
	accounts        map[int64]*models.Account
}

// NewFileLedgerStore loads the ledger file, creating an empty ledger if the
// file does not exist yet.
func NewFileLedgerStore(path string, startingBalance int64) (*FileLedgerStore, error) {
	s := &FileLedgerStore{
		path:            path,
		startingBalance: startingBalance,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the account for a user, lazily creating it with the starting balance
func (s *FileLedgerStore) Get(ctx context.Context, userID int64) (*models.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.accounts[userID]; ok {
		copied := *account
		return &copied, false, nil
	}

	now := time.Now().UTC()
	account := &models.Account{
		UserID:      userID,
		Balance:     s.startingBalance,
		CreatedAt:   now,
		LastUpdated: now,
	}
	s.accounts[userID] = account
	s.persist()

	copied := *account
	return &copied, true, nil
}

// Set overwrites a user's balance and persists synchronously
func (s *FileLedgerStore) Set(ctx context.Context, userID int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	account, ok := s.accounts[userID]
	if !ok {
		account = &models.Account{UserID: userID, CreatedAt: now}
		s.accounts[userID] = account
	}
	account.Balance = amount
	account.LastUpdated = now
	s.persist()
	return nil
}

// All returns a snapshot of every account
func (s *FileLedgerStore) All(ctx context.Context) ([]*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]*models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		copied := *account
		accounts = append(accounts, &copied)
	}
	return accounts, nil
}

// Reload re-reads the ledger file, discarding in-memory state
func (s *FileLedgerStore) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileLedgerStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.accounts = make(map[int64]*models.Account)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger file %s: %w", s.path, err)
	}

	var raw map[string]*models.Account
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse ledger file %s: %w", s.path, err)
	}

	accounts := make(map[int64]*models.Account, len(raw))
	for key, account := range raw {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q in ledger file: %w", key, err)
		}
		account.UserID = userID
		accounts[userID] = account
	}
	s.accounts = accounts
	return nil
}

// persist rewrites the whole ledger file. Called with s.mu held.
func (s *FileLedgerStore) persist() {
	raw := make(map[string]*models.Account, len(s.accounts))
	for userID, account := range s.accounts {
		raw[strconv.FormatInt(userID, 10)] = account
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		log.WithError(err).Warn("Failed to marshal ledger, in-memory state remains authoritative")
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("Failed to persist ledger, in-memory state remains authoritative")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("Failed to replace ledger file, in-memory state remains authoritative")
	}
}

// DefaultLedgerPath returns the ledger file path inside a data directory
func DefaultLedgerPath(dataDir string) string {
	return filepath.Join(dataDir, "ledger.json")
}
