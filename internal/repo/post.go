package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/blog-api/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

const postColumns = `id, COALESCE(title,''), COALESCE(content,''), COALESCE(author,''),
	COALESCE(tags,''), COALESCE(category,''), COALESCE(read_time,''), views, user_id, created_at`

// ========================
// REPOSITORY STRUCT
// ========================

type PostRepo struct {
	DB *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

func scanPost(row interface{ Scan(...interface{}) error }) (models.Post, error) {
	var p models.Post
	var userID sql.NullInt64
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Author,
		&p.Tags,
		&p.Category,
		&p.ReadTime,
		&p.Views,
		&userID,
		&p.CreatedAt,
	)
	if err != nil {
		return p, err
	}
	if userID.Valid {
		id := int(userID.Int64)
		p.UserID = &id
	}
	return p, nil
}

// ========================
// CREATE POST
// ========================

func (r *PostRepo) Create(ctx context.Context, title, content, author string, tags, category *string, readTime string, userID int) (models.Post, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO posts (title, content, author, tags, category, read_time, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+postColumns,
		title, content, author, tags, category, readTime, userID,
	)
	return scanPost(row)
}

// ========================
// GET POST BY ID
// ========================

func (r *PostRepo) GetByID(ctx context.Context, id int) (models.Post, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE id = $1`,
		id,
	)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return post, ErrNotFound
	}
	return post, err
}

// ========================
// INCREMENT VIEWS
// ========================

// IncrementViews bumps the view counter. A missing id matches zero rows and
// is not an error; the caller discovers absence on the subsequent fetch.
func (r *PostRepo) IncrementViews(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	return err
}

// ========================
// UPDATE POST BY ID
// ========================

// Update overwrites title, content, tags, and category from the given values.
// A nil value is written as NULL. read_time is left as it was at creation.
func (r *PostRepo) Update(ctx context.Context, id int, title, content, tags, category *string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE posts
		 SET title = $1, content = $2, tags = $3, category = $4
		 WHERE id = $5`,
		title, content, tags, category, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ========================
// DELETE POST BY ID
// ========================

func (r *PostRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ========================
// LIST ALL POSTS
// ========================

func (r *PostRepo) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

// ========================
// LIST POSTS WITH PAGINATION
// ========================

func (r *PostRepo) ListPage(ctx context.Context, limit, offset int) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
