package pathdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"carlo/internal/mc"

	_ "modernc.org/sqlite"
)

// Store 用裸 sqlite 保存每次估值留样的完整路径，量大且结构扁平，不走 ORM。
type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("path db 路径不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS path_points (
		run_id   TEXT    NOT NULL,
		path_idx INTEGER NOT NULL,
		step_idx INTEGER NOT NULL,
		t        REAL    NOT NULL,
		level    REAL    NOT NULL,
		PRIMARY KEY (run_id, path_idx, step_idx)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init path_points failed: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSamples 批量写入一次估值的留样路径。
func (s *Store) SaveSamples(ctx context.Context, runID string, paths []mc.Path) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id 不能为空")
	}
	if len(paths) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO path_points (run_id, path_idx, step_idx, t, level) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for pi, p := range paths {
		for si := range p.Times {
			if _, err := stmt.ExecContext(ctx, runID, pi, si, p.Times[si], p.Levels[si]); err != nil {
				tx.Rollback()
				return fmt.Errorf("写入路径点失败 (path=%d step=%d): %w", pi, si, err)
			}
		}
	}
	return tx.Commit()
}

// ListSamples 读回一次估值的全部留样路径，按 path_idx/step_idx 排序重建。
func (s *Store) ListSamples(ctx context.Context, runID string) ([]mc.Path, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path_idx, t, level FROM path_points WHERE run_id = ? ORDER BY path_idx, step_idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out     []mc.Path
		lastIdx = -1
	)
	for rows.Next() {
		var (
			idx   int
			t     float64
			level float64
		)
		if err := rows.Scan(&idx, &t, &level); err != nil {
			return nil, err
		}
		if idx != lastIdx {
			out = append(out, mc.Path{})
			lastIdx = idx
		}
		p := &out[len(out)-1]
		p.Times = append(p.Times, t)
		p.Levels = append(p.Levels, level)
	}
	return out, rows.Err()
}
