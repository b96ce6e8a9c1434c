package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewRecordsSchemaVersion 测试建库后写入版本号
func TestNewRecordsSchemaVersion(t *testing.T) {
	s := newTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("user_version = %d, want %d", version, schemaVersion)
	}
	if !strings.HasSuffix(s.Path(), "history.db") {
		t.Errorf("Path = %q", s.Path())
	}
}

// TestNewRejectsNewerSchema 测试拒绝更新版本写入的历史库
func TestNewRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := New(path, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	s.Close()

	_, err = New(path, nil)
	if !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("reopen err = %v, want ErrSchemaTooNew", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the history path: %v", err)
	}
}

// TestNewBadDir 测试数据目录无法创建
func TestNewBadDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	path := filepath.Join(blocker, "history.db")

	_, err := New(path, nil)
	if err == nil {
		t.Fatal("New should fail when the parent is a file")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the history path: %v", err)
	}
}
