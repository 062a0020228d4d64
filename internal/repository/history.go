package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/templui/imagehost/internal/model"
)

type HistoryRepository interface {
	Create(entry *model.HistoryEntry) error
	Recent(limit int) ([]*model.HistoryEntry, error)
	ByImageID(imageID int64) ([]*model.HistoryEntry, error)
	DeleteByImageID(imageID int64) (int64, error)
}

type historyRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) *historyRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(entry *model.HistoryEntry) error {
	query := `INSERT INTO uploads (id, image_id, filename, url, source, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		entry.ID,
		entry.ImageID,
		entry.Filename,
		entry.URL,
		entry.Source,
		entry.CreatedAt,
	)

	return err
}

// Recent returns the newest entries first
func (r *historyRepository) Recent(limit int) ([]*model.HistoryEntry, error) {
	entries := []*model.HistoryEntry{}
	query := `SELECT * FROM uploads ORDER BY created_at DESC, id DESC LIMIT $1`

	err := r.db.Select(&entries, query, limit)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *historyRepository) ByImageID(imageID int64) ([]*model.HistoryEntry, error) {
	entries := []*model.HistoryEntry{}
	query := `SELECT * FROM uploads WHERE image_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&entries, query, imageID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *historyRepository) DeleteByImageID(imageID int64) (int64, error) {
	query := `DELETE FROM uploads WHERE image_id = $1`
	result, err := r.db.Exec(query, imageID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
