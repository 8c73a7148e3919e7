// Package store persists imported stories so they can be recommended against
// without re-reading the source document.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kittclouds/thematic/internal/story"
)

// ErrNotFound is returned when no story has the requested id.
var ErrNotFound = errors.New("story not found")

// StoryRecord is a stored story document with its listing fields.
type StoryRecord struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Author    string   `json:"author,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Document  []byte   `json:"-"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Story decodes the stored document.
func (r *StoryRecord) Story() (*story.Story, error) {
	s, err := story.Decode(r.Document)
	if err != nil {
		return nil, fmt.Errorf("stored story %s: %w", r.ID, err)
	}
	return s, nil
}

// NewRecord encodes s into a record. A story without an id gets a fresh one,
// written back to s so the stored document carries it too.
func NewRecord(s *story.Story) (*StoryRecord, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	doc, err := story.Encode(s)
	if err != nil {
		return nil, err
	}
	return &StoryRecord{
		ID:        s.ID,
		Title:     s.Title,
		Author:    s.Author,
		Threshold: s.Metadata.ThemeThreshold,
		Document:  doc,
	}, nil
}

// stamp fills the id and timestamps before a write. created is the existing
// creation time, or 0 for a new record.
func (r *StoryRecord) stamp(created int64) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	if created == 0 {
		created = now
	}
	r.CreatedAt = created
	r.UpdatedAt = now
}

func (r *StoryRecord) clone() *StoryRecord {
	c := *r
	c.Document = append([]byte(nil), r.Document...)
	if r.Threshold != nil {
		v := *r.Threshold
		c.Threshold = &v
	}
	return &c
}

// Storer defines the interface for story persistence.
// MemStore backs tests, SQLiteStore everything else.
type Storer interface {
	// SaveStory inserts or replaces rec, assigning an id when empty.
	SaveStory(ctx context.Context, rec *StoryRecord) error
	GetStory(ctx context.Context, id string) (*StoryRecord, error)
	// ListStories returns records without their documents, oldest first.
	ListStories(ctx context.Context) ([]*StoryRecord, error)
	DeleteStory(ctx context.Context, id string) error
	CountStories(ctx context.Context) (int, error)

	Close() error
}
