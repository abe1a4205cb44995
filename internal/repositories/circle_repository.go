package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doujindesk/doujindesk-api/internal/models"
)

// CircleRepository stores circle applications.
type CircleRepository interface {
	Create(ctx context.Context, circle *models.Circle) error
	FindByID(ctx context.Context, id string) (*models.Circle, error)
	List(ctx context.Context, status models.CircleStatus) ([]*models.Circle, error)
	Update(ctx context.Context, circle *models.Circle) error
}

// CircleSchema creates the circles table.
const CircleSchema = `
	CREATE TABLE IF NOT EXISTS circles (
		id               CHAR(36)     NOT NULL PRIMARY KEY,
		name             VARCHAR(150) NOT NULL,
		pen_name         VARCHAR(150) NOT NULL DEFAULT '',
		email            VARCHAR(255) NOT NULL,
		phone            VARCHAR(50)  NOT NULL DEFAULT '',
		genre            VARCHAR(100) NOT NULL DEFAULT '',
		description      TEXT         NOT NULL,
		booth_preference VARCHAR(100) NOT NULL DEFAULT '',
		status           VARCHAR(20)  NOT NULL DEFAULT 'pending',
		review_notes     TEXT         NOT NULL,
		sample_url       VARCHAR(500) NOT NULL DEFAULT '',
		created_at       DATETIME     NOT NULL,
		updated_at       DATETIME     NOT NULL,
		INDEX idx_circles_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const circleColumns = `id, name, pen_name, email, phone, genre, description,
	booth_preference, status, review_notes, sample_url, created_at, updated_at`

type MySQLCircleRepository struct {
	db *sql.DB
}

func NewMySQLCircleRepository(db *sql.DB) *MySQLCircleRepository {
	return &MySQLCircleRepository{db: db}
}

// EnsureSchema creates the circles table when missing.
func (r *MySQLCircleRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, CircleSchema); err != nil {
		return fmt.Errorf("failed to create circles table: %w", err)
	}
	return nil
}

func (r *MySQLCircleRepository) Create(ctx context.Context, circle *models.Circle) error {
	query := `
		INSERT INTO circles (` + circleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		circle.ID, circle.Name, circle.PenName, circle.Email, circle.Phone,
		circle.Genre, circle.Description, circle.BoothPreference, circle.Status,
		circle.ReviewNotes, circle.SampleURL, circle.CreatedAt, circle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create circle: %w", err)
	}

	return nil
}

func (r *MySQLCircleRepository) FindByID(ctx context.Context, id string) (*models.Circle, error) {
	query := `SELECT ` + circleColumns + ` FROM circles WHERE id = ?`

	circle, err := scanCircle(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCircleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find circle: %w", err)
	}

	return circle, nil
}

// List returns circles newest first. An empty status returns every circle.
func (r *MySQLCircleRepository) List(ctx context.Context, status models.CircleStatus) ([]*models.Circle, error) {
	query := `SELECT ` + circleColumns + ` FROM circles`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query circles: %w", err)
	}
	defer rows.Close()

	circles := []*models.Circle{}
	for rows.Next() {
		circle, err := scanCircle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan circle: %w", err)
		}
		circles = append(circles, circle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate circles: %w", err)
	}

	return circles, nil
}

func (r *MySQLCircleRepository) Update(ctx context.Context, circle *models.Circle) error {
	query := `
		UPDATE circles
		SET name = ?, pen_name = ?, phone = ?, genre = ?, description = ?,
			booth_preference = ?, status = ?, review_notes = ?, sample_url = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		circle.Name, circle.PenName, circle.Phone, circle.Genre, circle.Description,
		circle.BoothPreference, circle.Status, circle.ReviewNotes, circle.SampleURL,
		circle.UpdatedAt, circle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update circle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrCircleNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCircle(row rowScanner) (*models.Circle, error) {
	circle := &models.Circle{}
	err := row.Scan(
		&circle.ID, &circle.Name, &circle.PenName, &circle.Email, &circle.Phone,
		&circle.Genre, &circle.Description, &circle.BoothPreference, &circle.Status,
		&circle.ReviewNotes, &circle.SampleURL, &circle.CreatedAt, &circle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return circle, nil
}
