package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Announcement is one spoken word together with where it was pointed at.
type Announcement struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	TipX       int       `json:"tip_x"`
	TipY       int       `json:"tip_y"`
	Distance   float64   `json:"distance"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnnouncementRepository provides access to the announcement history.
type AnnouncementRepository struct {
	db *sql.DB
}

// Announcements returns the announcement repository for this store.
func (s *Store) Announcements() *AnnouncementRepository {
	return &AnnouncementRepository{db: s.db}
}

// Create inserts a new announcement. ID and CreatedAt are filled in when empty.
func (r *AnnouncementRepository) Create(a *Announcement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO announcements (id, text, confidence, tip_x, tip_y, distance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Text, a.Confidence, a.TipX, a.TipY, a.Distance, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an announcement by its ID.
func (r *AnnouncementRepository) GetByID(id string) (*Announcement, error) {
	a := &Announcement{}
	err := r.db.QueryRow(
		`SELECT id, text, confidence, tip_x, tip_y, distance, created_at
		 FROM announcements WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.Text, &a.Confidence, &a.TipX, &a.TipY, &a.Distance, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns the most recent announcements, newest first.
// A non-positive limit returns the whole history.
func (r *AnnouncementRepository) List(limit int) ([]*Announcement, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, text, confidence, tip_x, tip_y, distance, created_at
		 FROM announcements ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var announcements []*Announcement
	for rows.Next() {
		a := &Announcement{}
		if err := rows.Scan(&a.ID, &a.Text, &a.Confidence, &a.TipX, &a.TipY, &a.Distance, &a.CreatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return announcements, nil
}

// Count returns the number of stored announcements.
func (r *AnnouncementRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM announcements`).Scan(&n)
	return n, err
}

// Clear deletes the whole history and returns how many rows were removed.
func (r *AnnouncementRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM announcements`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
