package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forum/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id    BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	text  TEXT NOT NULL
);`

// Postgres keeps posts in a single table; ids are BIGSERIAL values.
type Postgres struct {
	DB *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create posts table: %w", err)
	}
	return &Postgres{DB: pool}, nil
}

func (p *Postgres) Close(context.Context) error {
	p.DB.Close()
	return nil
}

func (p *Postgres) Insert(ctx context.Context, title, text string) (string, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `INSERT INTO posts (title, text) VALUES ($1, $2) RETURNING id`, title, text).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (p *Postgres) FindByID(ctx context.Context, id string) (model.Post, error) {
	n, err := parseSQLID(id)
	if err != nil {
		return model.Post{}, err
	}
	post := model.Post{ID: id}
	err = p.DB.QueryRow(ctx, `SELECT title, text FROM posts WHERE id = $1`, n).Scan(&post.Title, &post.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post %s: %w", id, err)
	}
	return post, nil
}

func (p *Postgres) List(ctx context.Context) ([]model.Post, error) {
	rows, err := p.DB.Query(ctx, `SELECT id, title, text FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var res []model.Post
	for rows.Next() {
		var (
			id   int64
			post model.Post
		)
		if err := rows.Scan(&id, &post.Title, &post.Text); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		post.ID = strconv.FormatInt(id, 10)
		res = append(res, post)
	}
	return res, rows.Err()
}

// parseSQLID accepts positive decimal integers only.
func parseSQLID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}
