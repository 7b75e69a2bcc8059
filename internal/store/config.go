package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM config WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
