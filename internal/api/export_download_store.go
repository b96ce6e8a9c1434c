package api

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

const exportDownloadTTL = 10 * time.Minute

type exportDownload struct {
	filePath  string
	fileName  string
	expiresAt time.Time
}

// exportDownloadStore 一次性下载令牌
type exportDownloadStore struct {
	mu    sync.Mutex
	items map[string]exportDownload
	now   func() time.Time
}

func newExportDownloadStore() *exportDownloadStore {
	return &exportDownloadStore{
		items: make(map[string]exportDownload),
		now:   time.Now,
	}
}

func (s *exportDownloadStore) put(filePath, fileName string, ttl time.Duration) (token string, expired []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired = s.purgeExpiredLocked(now)

	token = newRandomToken(24)
	s.items[token] = exportDownload{
		filePath:  filePath,
		fileName:  fileName,
		expiresAt: now.Add(ttl),
	}
	return token, expired
}

// take 取出并作废令牌
func (s *exportDownloadStore) take(token string) (exportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[token]
	if !ok {
		return exportDownload{}, false
	}
	delete(s.items, token)
	if s.now().After(v.expiresAt) {
		return exportDownload{}, false
	}
	return v, true
}

// purgeExpiredLocked 返回过期条目的文件路径，由调用方删除
func (s *exportDownloadStore) purgeExpiredLocked(now time.Time) []string {
	var paths []string
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			paths = append(paths, v.filePath)
			delete(s.items, k)
		}
	}
	return paths
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
