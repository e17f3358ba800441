package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"xubot/models"

	log "github.com/sirupsen/logrus"
)

// biasFileDocument mirrors the on-disk layout of the bias records file
type biasFileDocument struct {
	UnluckyUsers map[string]*models.BiasRecord `json:"unlucky_users"`
}

// FileBiasStore is a JSON-file-backed bias record store with the same
// write-through and best-effort durability semantics as FileLedgerStore.
type FileBiasStore struct {
	mu      sync.Mutex
	path    string
	records map[int64]*models.BiasRecord
}

// NewFileBiasStore loads the bias file, creating an empty store if absent
func NewFileBiasStore(path string) (*FileBiasStore, error) {
	s := &FileBiasStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the bias record for a user, or nil if none exists
func (s *FileBiasStore) Get(ctx context.Context, userID int64) (*models.BiasRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

// Put stores a bias record for record.UserID
func (s *FileBiasStore) Put(ctx context.Context, record *models.BiasRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	s.records[record.UserID] = &copied
	s.persist()
	return nil
}

// Remove deletes a user's bias record, reporting whether one existed
func (s *FileBiasStore) Remove(ctx context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[userID]; !ok {
		return false, nil
	}
	delete(s.records, userID)
	s.persist()
	return true, nil
}

// IncrementGamesAffected bumps the audit counter on a user's record
func (s *FileBiasStore) IncrementGamesAffected(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[userID]
	if !ok {
		return nil
	}
	record.GamesAffected++
	s.persist()
	return nil
}

// All returns a snapshot of every bias record
func (s *FileBiasStore) All(ctx context.Context) ([]*models.BiasRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*models.BiasRecord, 0, len(s.records))
	for _, record := range s.records {
		copied := *record
		records = append(records, &copied)
	}
	return records, nil
}

// Reload re-reads the bias file, discarding in-memory state
func (s *FileBiasStore) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileBiasStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.records = make(map[int64]*models.BiasRecord)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read bias file %s: %w", s.path, err)
	}

	var doc biasFileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse bias file %s: %w", s.path, err)
	}

	records := make(map[int64]*models.BiasRecord, len(doc.UnluckyUsers))
	for key, record := range doc.UnluckyUsers {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q in bias file: %w", key, err)
		}
		record.UserID = userID
		if record.State == "" {
			record.State = models.BiasStateUnlucky
		}
		records[userID] = record
	}
	s.records = records
	return nil
}

// persist rewrites the whole bias file. Called with s.mu held.
func (s *FileBiasStore) persist() {
	doc := biasFileDocument{UnluckyUsers: make(map[string]*models.BiasRecord, len(s.records))}
	for userID, record := range s.records {
		doc.UnluckyUsers[strconv.FormatInt(userID, 10)] = record
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.WithError(err).Warn("Failed to marshal bias records, in-memory state remains authoritative")
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("Failed to persist bias records, in-memory state remains authoritative")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("Failed to replace bias file, in-memory state remains authoritative")
	}
}

// DefaultBiasPath returns the bias file path inside a data directory
func DefaultBiasPath(dataDir string) string {
	return filepath.Join(dataDir, "bias.json")
}
