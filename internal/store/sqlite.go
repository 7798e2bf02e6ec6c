package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"forum/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	text  TEXT NOT NULL
);`

// SQLite keeps posts in a local database file.
type SQLite struct {
	DBConn *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create posts table: %w", err)
	}
	return &SQLite{DBConn: db}, nil
}

func (s *SQLite) Close(context.Context) error {
	return s.DBConn.Close()
}

func (s *SQLite) Insert(ctx context.Context, title, text string) (string, error) {
	res, err := s.DBConn.ExecContext(ctx, `INSERT INTO posts (title, text) VALUES (?, ?)`, title, text)
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SQLite) FindByID(ctx context.Context, id string) (model.Post, error) {
	n, err := parseSQLID(id)
	if err != nil {
		return model.Post{}, err
	}
	post := model.Post{ID: id}
	err = s.DBConn.QueryRowContext(ctx, `SELECT title, text FROM posts WHERE id = ?`, n).Scan(&post.Title, &post.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post %s: %w", id, err)
	}
	return post, nil
}

func (s *SQLite) List(ctx context.Context) ([]model.Post, error) {
	rows, err := s.DBConn.QueryContext(ctx, `SELECT id, title, text FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var (
			id   int64
			post model.Post
		)
		if err := rows.Scan(&id, &post.Title, &post.Text); err != nil {
			return nil, err
		}
		post.ID = strconv.FormatInt(id, 10)
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
