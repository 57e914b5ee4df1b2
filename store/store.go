package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/drivescan/drivescan-backend/models"
)

// Keys of the local persistent store. String values throughout; booleans
// are stored as "true"/"false" and timestamps as epoch millis.
const (
	KeyScriptEndpoint   = "remote_script_endpoint"
	KeySheetPageURL     = "remote_sheet_page_url"
	KeyHistoryCache     = "processed_documents_cache"
	KeySessionActive    = "session_active"
	KeyInstallTimestamp = "install_timestamp"
	KeyPremiumFlag      = "premium_flag"
)

// Store wraps the sqlite-backed settings table. All writes are last-write-
// wins; there is no cross-key transaction because no caller needs one.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key, or "" when the key was never written.
func (s *Store) Get(key string) string {
	var setting models.Setting
	err := s.db.First(&setting, "key = ?", key).Error
	if err != nil {
		return ""
	}
	return setting.Value
}

func (s *Store) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return s.db.Save(&setting).Error
}

func (s *Store) Delete(key string) error {
	return s.db.Delete(&models.Setting{}, "key = ?", key).Error
}

func (s *Store) GetBool(key string) bool {
	return s.Get(key) == "true"
}

func (s *Store) SetBool(key string, v bool) error {
	return s.Set(key, strconv.FormatBool(v))
}

// InstallTimestamp returns the epoch millis of first run, initializing it
// on first access so the trial window always has an anchor.
func (s *Store) InstallTimestamp() int64 {
	if raw := s.Get(KeyInstallTimestamp); raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return ms
		}
	}
	now := time.Now().UnixMilli()
	if err := s.Set(KeyInstallTimestamp, strconv.FormatInt(now, 10)); err != nil {
		return now
	}
	return now
}

// History returns the cached document list, most recent first. A missing
// or corrupt cache reads as empty.
func (s *Store) History() []models.ProcessedDocument {
	raw := s.Get(KeyHistoryCache)
	if raw == "" {
		return []models.ProcessedDocument{}
	}
	var docs []models.ProcessedDocument
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return []models.ProcessedDocument{}
	}
	return docs
}

// ReplaceHistory swaps the entire cache for docs. Used after a successful
// bridge read: the remote set is authoritative, nothing is merged.
func (s *Store) ReplaceHistory(docs []models.ProcessedDocument) error {
	if docs == nil {
		docs = []models.ProcessedDocument{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("no se pudo serializar el historial: %w", err)
	}
	return s.Set(KeyHistoryCache, string(data))
}

// PrependHistory puts doc at the head of the cache (newest first).
func (s *Store) PrependHistory(doc models.ProcessedDocument) error {
	docs := append([]models.ProcessedDocument{doc}, s.History()...)
	return s.ReplaceHistory(docs)
}

// HistoryFileNames returns the set of file names already in the cache,
// used by the queue's duplicate check.
func (s *Store) HistoryFileNames() map[string]bool {
	names := make(map[string]bool)
	for _, doc := range s.History() {
		names[doc.FileName] = true
	}
	return names
}

// ErrNotFound reports a missing key for callers that need to distinguish
// "unset" from "empty".
var ErrNotFound = errors.New("setting not found")

// Lookup is Get with presence information.
func (s *Store) Lookup(key string) (string, error) {
	var setting models.Setting
	err := s.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}
