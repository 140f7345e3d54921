package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// fileRecord is the JSON-serialized form of a NewsRecord.
type fileRecord struct {
	ID                   int64      `json:"id"`
	Category             string     `json:"category"`
	Title                string     `json:"title"`
	Author               string     `json:"author"`
	Description          string     `json:"description"`
	URL                  string     `json:"url"`
	ImageURL             string     `json:"image_url"`
	PublishedAt          string     `json:"published_at"`
	CreatedAt            time.Time  `json:"created_at"`
	PublishedToChannelAt *time.Time `json:"published_to_channel_at,omitempty"`
}

// FileStore keeps ingested news in a JSON file. It exists so the bot can
// run without a database; the interface contract matches PostgresStore.
type FileStore struct {
	filePath string
	mu       sync.RWMutex
	nextID   int64
	byURL    map[string]*fileRecord
	byID     map[int64]*fileRecord
}

// NewFileStore loads existing records from the file (if any).
func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		nextID:   1,
		byURL:    make(map[string]*fileRecord),
		byID:     make(map[int64]*fileRecord),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse store file: %w", err)
	}

	for i := range records {
		rec := &records[i]
		fs.byURL[rec.URL] = rec
		fs.byID[rec.ID] = rec
		if rec.ID >= fs.nextID {
			fs.nextID = rec.ID + 1
		}
	}
	return nil
}

// save writes all records back to disk. Caller must hold the write lock.
func (fs *FileStore) save() error {
	records := make([]fileRecord, 0, len(fs.byID))
	for id := int64(1); id < fs.nextID; id++ {
		if rec, ok := fs.byID[id]; ok {
			records = append(records, *rec)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

func (fs *FileStore) Exists(_ context.Context, url string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.byURL[url]
	return ok, nil
}

func (fs *FileStore) Insert(_ context.Context, rec *NewsRecord) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.byURL[rec.URL]; ok {
		return false, nil
	}

	stored := &fileRecord{
		ID:          fs.nextID,
		Category:    rec.Category,
		Title:       rec.Title,
		Author:      rec.Author,
		Description: rec.Description,
		URL:         rec.URL,
		ImageURL:    rec.ImageURL,
		PublishedAt: rec.PublishedAt,
		CreatedAt:   time.Now(),
	}
	fs.nextID++
	fs.byURL[stored.URL] = stored
	fs.byID[stored.ID] = stored

	if err := fs.save(); err != nil {
		return false, err
	}

	return true, nil
}

func (fs *FileStore) GetByURL(_ context.Context, url string) (*NewsRecord, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return toNewsRecord(fs.byURL[url]), nil
}

func (fs *FileStore) GetByID(_ context.Context, id int64) (*NewsRecord, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return toNewsRecord(fs.byID[id]), nil
}

func (fs *FileStore) MarkPublished(_ context.Context, id int64) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	rec, ok := fs.byID[id]
	if !ok || rec.PublishedToChannelAt != nil {
		return false, nil
	}
	now := time.Now()
	rec.PublishedToChannelAt = &now

	if err := fs.save(); err != nil {
		return false, err
	}
	return true, nil
}

func (fs *FileStore) Close() error {
	return nil
}

func toNewsRecord(rec *fileRecord) *NewsRecord {
	if rec == nil {
		return nil
	}
	out := &NewsRecord{
		ID:          rec.ID,
		Category:    rec.Category,
		Title:       rec.Title,
		Author:      rec.Author,
		Description: rec.Description,
		URL:         rec.URL,
		ImageURL:    rec.ImageURL,
		PublishedAt: rec.PublishedAt,
		CreatedAt:   rec.CreatedAt,
	}
	if rec.PublishedToChannelAt != nil {
		t := *rec.PublishedToChannelAt
		out.PublishedToChannelAt = &t
	}
	return out
}
