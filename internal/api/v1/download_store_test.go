package v1

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDownloadStore_PurgeRemovesExpiredUploadCopies(t *testing.T) {
	dir := t.TempDir()
	upload := filepath.Join(dir, "upload.xlsx")
	source := filepath.Join(dir, "source.xlsx")
	for _, p := range []string{upload, source} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	s := newDownloadStore()
	s.put(download{filePath: upload, fileName: "upload.xlsx", removeAfter: true}, -time.Second)
	s.put(download{filePath: source, fileName: "source.xlsx"}, -time.Second)

	// put/take 都会先清理过期项
	if _, ok := s.take("missing"); ok {
		t.Fatalf("unexpected token hit")
	}
	if len(s.items) != 0 {
		t.Fatalf("expired items not purged: %d left", len(s.items))
	}
	if _, err := os.Stat(upload); !os.IsNotExist(err) {
		t.Fatalf("expired upload copy still on disk: %v", err)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("configured source must be kept: %v", err)
	}
}

func TestDownloadStore_TakeIsSingleUse(t *testing.T) {
	s := newDownloadStore()
	token := s.put(download{filePath: "a.xlsx", fileName: "a.xlsx"}, time.Minute)

	if v, ok := s.take(token); !ok || v.fileName != "a.xlsx" {
		t.Fatalf("take=%+v ok=%v", v, ok)
	}
	if _, ok := s.take(token); ok {
		t.Fatalf("token reused")
	}
}
