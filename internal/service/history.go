package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/repository"
)

// HistoryService keeps a local record of uploads made from this machine
type HistoryService struct {
	repo  repository.HistoryRepository
	limit int
	now   func() time.Time
}

func NewHistoryService(repo repository.HistoryRepository, limit int) *HistoryService {
	if limit <= 0 {
		limit = 5
	}
	return &HistoryService{
		repo:  repo,
		limit: limit,
		now:   time.Now,
	}
}

// Record stores an uploaded image. source is model.HistorySourceCLI or model.HistorySourceWatch.
func (s *HistoryService) Record(image *model.Image, source string) (*model.HistoryEntry, error) {
	if image == nil {
		return nil, fmt.Errorf("failed to record upload: no image")
	}

	entry := &model.HistoryEntry{
		ID:        uuid.New().String(),
		ImageID:   image.ID,
		Filename:  image.OriginalFilename,
		URL:       image.URL,
		Source:    source,
		CreatedAt: s.now().UTC(),
	}

	err := s.repo.Create(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	slog.Debug("upload recorded", "image_id", image.ID, "source", source)
	return entry, nil
}

// Recent returns up to limit entries, newest first. limit <= 0 uses the configured default.
func (s *HistoryService) Recent(limit int) ([]*model.HistoryEntry, error) {
	if limit <= 0 {
		limit = s.limit
	}

	entries, err := s.repo.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// Forget drops the entries of a deleted image
func (s *HistoryService) Forget(imageID int64) error {
	n, err := s.repo.DeleteByImageID(imageID)
	if err != nil {
		return fmt.Errorf("failed to forget image %d: %w", imageID, err)
	}
	if n > 0 {
		slog.Debug("history entries removed", "image_id", imageID, "count", n)
	}
	return nil
}
