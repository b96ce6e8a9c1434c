package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildExportContentDisposition(t *testing.T) {
	t.Parallel()

	got := buildExportContentDisposition("86d_Café_week3.xlsx")
	want := "attachment; filename=\"86d_Caf__week3.xlsx\"; filename*=UTF-8''86d_Caf%C3%A9_week3.xlsx"
	if got != want {
		t.Fatalf("content-disposition mismatch:\n got: %s\nwant: %s", got, want)
	}
}

// TestExportStreamAndDownload 测试 SSE 导出后凭令牌下载一次
func TestExportStreamAndDownload(t *testing.T) {
	env := newTestEnv(t)
	loc := createLocation(t, env, map[string]any{"name": "Main Street", "operations": healthyOps()})
	env.do(t, http.MethodPost, "/api/locations/"+loc.ID+"/advance", nil)

	w := env.do(t, http.MethodPost, "/api/locations/"+loc.ID+"/export/stream", nil)
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var types []string
	var downloadURL string
	scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad event %q: %v", line, err)
		}
		types = append(types, ev.Type)
		if ev.Type == "done" {
			downloadURL, _ = ev.Data["downloadUrl"].(string)
		}
	}
	if len(types) < 3 || types[0] != "start" || types[len(types)-1] != "done" {
		t.Fatalf("unexpected event sequence: %v", types)
	}
	if !strings.HasPrefix(downloadURL, "/api/export/download/") {
		t.Fatalf("downloadUrl = %q", downloadURL)
	}

	first := env.do(t, http.MethodGet, downloadURL, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("download status = %d body=%s", first.Code, first.Body.String())
	}
	if cd := first.Header().Get("Content-Disposition"); !strings.Contains(cd, "Main_Street_week1.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	second := env.do(t, http.MethodGet, downloadURL, nil)
	if second.Code != http.StatusNotFound {
		t.Errorf("second download status = %d, want 404", second.Code)
	}

	entries, _ := os.ReadDir(filepath.Join(env.dataDir, "exports"))
	if len(entries) != 0 {
		t.Errorf("export temp files left behind: %d", len(entries))
	}
}

// TestExportDownloadStoreExpiry 测试令牌过期
func TestExportDownloadStoreExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newExportDownloadStore()
	s.now = func() time.Time { return now }

	stale, _ := s.put("/tmp/a.xlsx", "a.xlsx", time.Minute)
	fresh, _ := s.put("/tmp/b.xlsx", "b.xlsx", time.Hour)

	now = now.Add(2 * time.Minute)

	if _, ok := s.take(stale); ok {
		t.Error("expired token should not be served")
	}

	_, expired := s.put("/tmp/c.xlsx", "c.xlsx", time.Minute)
	if len(expired) != 0 {
		t.Errorf("expired = %v, stale entry was already taken", expired)
	}

	item, ok := s.take(fresh)
	if !ok || item.fileName != "b.xlsx" {
		t.Errorf("take(fresh) = %+v, %v", item, ok)
	}
	if _, ok := s.take(fresh); ok {
		t.Error("token should be single use")
	}
}

// TestExportDownloadStorePurge 测试写入时清理过期文件
func TestExportDownloadStorePurge(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newExportDownloadStore()
	s.now = func() time.Time { return now }

	s.put("/tmp/old.xlsx", "old.xlsx", time.Minute)
	now = now.Add(time.Hour)

	_, expired := s.put("/tmp/new.xlsx", "new.xlsx", time.Minute)
	if len(expired) != 1 || expired[0] != "/tmp/old.xlsx" {
		t.Errorf("expired = %v, want [/tmp/old.xlsx]", expired)
	}
}
