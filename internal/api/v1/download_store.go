package v1

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"os"
	"sync"
	"time"
)

// downloadTTL 下载链接有效期
const downloadTTL = 10 * time.Minute

type download struct {
	filePath string
	fileName string
	// removeAfter 下载后删除文件（上传副本）；配置的源文件不删
	removeAfter bool
	expiresAt   time.Time
}

type downloadStore struct {
	mu    sync.Mutex
	items map[string]download
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]download),
	}
}

func (s *downloadStore) put(item download, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	item.expiresAt = time.Now().Add(ttl)
	s.items[token] = item
	return token
}

// take 取出并作废 token
func (s *downloadStore) take(token string) (download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	if !ok {
		return download{}, false
	}
	delete(s.items, token)
	return v, true
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if !now.After(v.expiresAt) {
			continue
		}
		delete(s.items, k)
		// 过期未下载的上传副本也要清掉
		if v.removeAfter {
			if err := os.Remove(v.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Printf("[api] WARNING: 删除过期下载文件失败 %s: %v", v.filePath, err)
			}
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
