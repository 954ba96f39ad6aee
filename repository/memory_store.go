package repository

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

type memoryEntry struct {
	taxpayerID string
	year       int
	doc        dto.ParsedDocument
}

// MemoryStore keeps documents in process memory. Entries never expire.
type MemoryStore struct {
	// mu serializes read-modify-write in Update.
	mu    sync.Mutex
	items *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Save(_ context.Context, taxpayerID string, year int, doc dto.ParsedDocument) error {
	s.items.Set(doc.ID, memoryEntry{taxpayerID: taxpayerID, year: year, doc: doc}, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (dto.ParsedDocument, error) {
	entry, ok := s.entry(id)
	if !ok {
		return dto.ParsedDocument{}, dto.ErrDocumentNotFound
	}
	return entry.doc, nil
}

func (s *MemoryStore) List(_ context.Context, taxpayerID string, year int) ([]dto.ParsedDocument, error) {
	docs := []dto.ParsedDocument{}
	for _, item := range s.items.Items() {
		entry, ok := item.Object.(memoryEntry)
		if !ok || entry.taxpayerID != taxpayerID || entry.year != year {
			continue
		}
		docs = append(docs, entry.doc)
	}
	sortDocuments(docs)
	return docs, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, apply func(*dto.ParsedDocument) error) (dto.ParsedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entry(id)
	if !ok {
		return dto.ParsedDocument{}, dto.ErrDocumentNotFound
	}
	if err := apply(&entry.doc); err != nil {
		return dto.ParsedDocument{}, err
	}
	s.items.Set(id, entry, cache.NoExpiration)
	return entry.doc, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if _, ok := s.items.Get(id); !ok {
		return dto.ErrDocumentNotFound
	}
	s.items.Delete(id)
	return nil
}

func (s *MemoryStore) entry(id string) (memoryEntry, bool) {
	item, ok := s.items.Get(id)
	if !ok {
		return memoryEntry{}, false
	}
	entry, ok := item.(memoryEntry)
	return entry, ok
}
