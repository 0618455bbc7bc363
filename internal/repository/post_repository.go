package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/forepost/api/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	GetDue(ctx context.Context, upcoming time.Time) ([]*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Update(ctx context.Context, post *models.Post) error
	SetPublished(ctx context.Context, postID int64, platformPostID string) error
	SetFailed(ctx context.Context, postID int64) error
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, content, scheduled_time, created_at, updated_at, status, platform, post_id, image_filename, image_url`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	var platformPostID, imageFilename, imageURL sql.NullString
	err := row.Scan(&post.ID, &post.UserID, &post.Content, &post.ScheduledTime,
		&post.CreatedAt, &post.UpdatedAt, &post.Status, &post.Platform,
		&platformPostID, &imageFilename, &imageURL)
	if err != nil {
		return nil, err
	}
	post.PostID = platformPostID.String
	post.ImageFilename = imageFilename.String
	post.ImageURL = imageURL.String
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, content, scheduled_time, status, platform, post_id, image_filename, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.Content, post.ScheduledTime, post.Status, post.Platform, post.PostID, post.ImageFilename, post.ImageURL).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.Content, post.ScheduledTime, post.Status, post.Platform, post.PostID, post.ImageFilename, post.ImageURL).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY scheduled_time DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetDue returns posts with status "scheduled" whose scheduled time falls at or
// before the given instant. Failed posts are never re-selected.
func (r *postRepository) GetDue(ctx context.Context, upcoming time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND scheduled_time <= $2 ORDER BY scheduled_time ASC`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, upcoming)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET content = $1,
			scheduled_time = $2,
			status = $3,
			platform = $4,
			post_id = $5,
			image_filename = $6,
			image_url = $7,
			updated_at = $8
		WHERE id = $9
	`
	_, err := r.db.ExecContext(ctx, query, post.Content, post.ScheduledTime, post.Status,
		post.Platform, post.PostID, post.ImageFilename, post.ImageURL, time.Now().UTC(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetPublished records a successful publish. The row is re-read inside the
// transaction so a racing writer serializes through the database rather than
// interleaving with this status change.
func (r *postRepository) SetPublished(ctx context.Context, postID int64, platformPostID string) error {
	return r.setStatus(ctx, postID, models.PostStatusPosted, platformPostID)
}

func (r *postRepository) SetFailed(ctx context.Context, postID int64) error {
	return r.setStatus(ctx, postID, models.PostStatusFailed, "")
}

func (r *postRepository) setStatus(ctx context.Context, postID int64, status, platformPostID string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&id)
	if err != nil {
		tx.Rollback()
		slog.Info(err.Error())
		return err
	}

	if platformPostID != "" {
		_, err = tx.ExecContext(ctx, `UPDATE posts SET status = $1, post_id = $2, updated_at = $3 WHERE id = $4`,
			status, platformPostID, time.Now().UTC(), postID)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE posts SET status = $1, updated_at = $2 WHERE id = $3`,
			status, time.Now().UTC(), postID)
	}
	if err != nil {
		tx.Rollback()
		slog.Info(err.Error())
		return err
	}

	return tx.Commit()
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
