package store

import (
	"context"
	"fmt"
	"strings"
)

// KnowledgeItem is a standing reference document folded into every outbound
// prompt. Global scope: it persists across all chats and rooms.
type KnowledgeItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	AddedAt string `json:"addedAt"`
}

// knowledge uploads accept plain text and markdown only, tighter than
// message attachments.
func isKnowledgeFile(name, mimeType string) bool {
	if mimeType == "text/plain" || mimeType == "text/markdown" {
		return true
	}
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".txt")
}

// Knowledge returns all knowledge items.
func (s *Store) Knowledge(ctx context.Context) ([]KnowledgeItem, error) {
	var items []KnowledgeItem
	if err := s.loadCollection(ctx, KeyKnowledge, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveKnowledge rewrites the knowledge collection in full.
func (s *Store) SaveKnowledge(ctx context.Context, items []KnowledgeItem) error {
	return s.saveCollection(ctx, KeyKnowledge, items)
}

// AddKnowledge appends an uploaded document. Content beyond MaxTextChars is
// truncated like text attachments.
func (s *Store) AddKnowledge(ctx context.Context, name, mimeType, content string) (KnowledgeItem, error) {
	if !isKnowledgeFile(name, mimeType) {
		return KnowledgeItem{}, &UnsupportedAttachmentError{Name: name, Reason: fmt.Sprintf("knowledge accepts text formats only, got %s", mimeType)}
	}

	item := KnowledgeItem{
		ID:      GenerateID("knw"),
		Name:    name,
		Content: TruncateText(content),
		AddedAt: Timestamp(),
	}

	items, err := s.Knowledge(ctx)
	if err != nil {
		return KnowledgeItem{}, err
	}
	items = append(items, item)
	if err := s.SaveKnowledge(ctx, items); err != nil {
		return KnowledgeItem{}, err
	}
	return item, nil
}

// RemoveKnowledge deletes a knowledge item by ID.
func (s *Store) RemoveKnowledge(ctx context.Context, id string) error {
	items, err := s.Knowledge(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, k := range items {
		if k.ID != id {
			kept = append(kept, k)
		}
	}
	return s.SaveKnowledge(ctx, kept)
}
