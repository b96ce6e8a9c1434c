package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaFS embed.FS

// schemaVersion 记录在 PRAGMA user_version
const schemaVersion = 1

// ErrSchemaTooNew 历史库由更新版本写入
var ErrSchemaTooNew = errors.New("history schema is newer than supported")

// Store 门店周历史（损益 + 现金流），每个数据目录一个 SQLite 文件
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// New 打开历史库，不存在时建库建表
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("history %s: create dir: %w", dbPath, err)
	}

	// WAL；外部进程持锁时最多等 5 秒
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history %s: open: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: dbPath, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history %s: %w", dbPath, err)
	}

	logger.Info("history store opened", zap.String("path", dbPath), zap.Int("schemaVersion", schemaVersion))
	return s, nil
}

// migrate 建表并校验版本，旧库补写版本号
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("%w: found %d, supported %d", ErrSchemaTooNew, version, schemaVersion)
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if version < schemaVersion {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
		s.logger.Debug("history schema upgraded", zap.Int("from", version), zap.Int("to", schemaVersion))
	}
	return nil
}

// Path 历史库文件路径
func (s *Store) Path() string {
	return s.path
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("history %s: close: %w", s.path, err)
	}
	return nil
}
