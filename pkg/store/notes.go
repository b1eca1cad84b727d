package store

import (
	"context"

	"github.com/inkpad/inkpad/pkg/models"
)

func (s *GORMStore) ListNotes(ctx context.Context, userID uint) ([]*models.Note, error) {
	var notes []*models.Note
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *GORMStore) CreateNote(ctx context.Context, note *models.Note) error {
	return s.db.WithContext(ctx).Create(note).Error
}

func (s *GORMStore) DeleteNote(ctx context.Context, noteID, userID uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ? AND user_id = ? AND deleted = ?", noteID, userID, false).
		Update("deleted", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNoteNotFound
	}
	return nil
}
