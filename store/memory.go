package store

import (
	"context"
	"strings"
)

// CoreMemory is a short user-pinned fact always included in the outbound
// prompt. Global scope like knowledge items.
type CoreMemory struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// CoreMemories returns all pinned memories.
func (s *Store) CoreMemories(ctx context.Context) ([]CoreMemory, error) {
	var memories []CoreMemory
	if err := s.loadCollection(ctx, KeyCoreMemories, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

// SaveCoreMemories rewrites the memory collection in full.
func (s *Store) SaveCoreMemories(ctx context.Context, memories []CoreMemory) error {
	return s.saveCollection(ctx, KeyCoreMemories, memories)
}

// AddCoreMemory appends a pinned fact. Blank content is a no-op.
func (s *Store) AddCoreMemory(ctx context.Context, content string) (CoreMemory, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return CoreMemory{}, ErrEmptyContent
	}

	memory := CoreMemory{
		ID:        GenerateID("mem"),
		Content:   content,
		CreatedAt: Timestamp(),
	}

	memories, err := s.CoreMemories(ctx)
	if err != nil {
		return CoreMemory{}, err
	}
	memories = append(memories, memory)
	if err := s.SaveCoreMemories(ctx, memories); err != nil {
		return CoreMemory{}, err
	}
	return memory, nil
}

// UpdateCoreMemory replaces a memory's content. Blank content is a no-op.
func (s *Store) UpdateCoreMemory(ctx context.Context, id, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	memories, err := s.CoreMemories(ctx)
	if err != nil {
		return err
	}
	for i := range memories {
		if memories[i].ID == id {
			memories[i].Content = content
			return s.SaveCoreMemories(ctx, memories)
		}
	}
	return ErrNotFound
}

// DeleteCoreMemory removes a memory by ID.
func (s *Store) DeleteCoreMemory(ctx context.Context, id string) error {
	memories, err := s.CoreMemories(ctx)
	if err != nil {
		return err
	}
	kept := memories[:0]
	for _, m := range memories {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return s.SaveCoreMemories(ctx, kept)
}
