// 包 store 提供抓取流水的存储实现（SQLite），包含表迁移/写入/查询/清理等操作。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go-film-recap/internal/model"
)

// SQLite 封装 *sql.DB，基于 modernc.org/sqlite（纯 Go 实现）。
type SQLite struct {
	db *sql.DB
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
func OpenSQLite(path string) (*SQLite, error) {
	// 说明：modernc sqlite 的 DSN 可直接使用文件路径，或以 'file:...' 前缀表示
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// migrate 执行建表语句，保持幂等。
func (s *SQLite) migrate() error {
	const q = `CREATE TABLE IF NOT EXISTS fetch_log (
        user TEXT NOT NULL,
        year INTEGER NOT NULL,
        pages INTEGER,
        entries INTEGER,
        stop_reason TEXT,
        duration_ms INTEGER,
        created_at TIMESTAMP
    );`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("exec migrate: %w", err)
	}
	return nil
}

// Reset 清空流水表（不删除数据库文件）。
func (s *SQLite) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fetch_log`); err != nil {
		return fmt.Errorf("delete fetch_log: %w", err)
	}
	return nil
}

// InsertFetchLog 追加一条抓取流水（只增不改）。
func (s *SQLite) InsertFetchLog(ctx context.Context, l model.FetchLog) error {
	if l.User == "" {
		return errors.New("fetch_log.user required")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO fetch_log(user, year, pages, entries, stop_reason, duration_ms, created_at)
        VALUES(?,?,?,?,?,?,?)`,
		l.User, l.Year, l.Pages, l.Entries, l.StopReason, l.DurationMS, nowOr(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert fetch_log %s/%d: %w", l.User, l.Year, err)
	}
	return nil
}

// RecentFetchLogs 返回最近 n 条流水，按时间倒序。
func (s *SQLite) RecentFetchLogs(ctx context.Context, n int) ([]model.FetchLog, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT user, year, pages, entries, COALESCE(stop_reason,''), duration_ms, created_at
        FROM fetch_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query fetch_log: %w", err)
	}
	defer rows.Close()
	var out []model.FetchLog
	for rows.Next() {
		var l model.FetchLog
		var createdAt sql.NullTime
		if err := rows.Scan(&l.User, &l.Year, &l.Pages, &l.Entries, &l.StopReason, &l.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan fetch_log: %w", err)
		}
		if createdAt.Valid {
			l.CreatedAt = createdAt.Time
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fetch_log: %w", err)
	}
	return out, nil
}

// CleanOldLogs 按天数阈值清理过期流水（基于 created_at 字段）。
func (s *SQLite) CleanOldLogs(ctx context.Context, days int) error {
	if days <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM fetch_log WHERE created_at < datetime('now', ?)`, fmtDays(days))
	if err != nil {
		return fmt.Errorf("clean old fetch_log: %w", err)
	}
	return nil
}

func fmtDays(days int) string { return fmt.Sprintf("-%d days", days) }
func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
