// Package credentials хранит реестр API-учёток Telegram (api_id/api_hash) под
// человекочитаемыми именами. Реестр — плоский JSON-файл вида
//
//	{"main": {"api_id": "12345", "api_hash": "0123abcd..."}}
//
// Файл читается один раз при открытии; каждая регистрация сразу переписывает его целиком.
package credentials

import (
	"os"
	"sort"
	"strings"
	"sync"

	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/storage"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// API — одна учётка приложения Telegram. APIID хранится строкой, как в файле.
type API struct {
	Name    string
	APIID   string
	APIHash string
}

// entry — схема значения в JSON-файле.
type entry struct {
	APIID   string `json:"api_id"`
	APIHash string `json:"api_hash"`
}

// Store — потокобезопасный реестр учёток с персистентностью в JSON.
type Store struct {
	path    string
	mu      sync.RWMutex
	entries map[string]entry
}

// Open загружает реестр из path. Отсутствующий или битый файл не ошибка:
// реестр стартует пустым, причина пишется в лог.
func Open(path string) *Store {
	s := &Store{path: path, entries: make(map[string]entry)}

	loaded := make(map[string]entry)
	if err := storage.ReadJSON(path, &loaded); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("api registry not found, starting empty", zap.String("path", path))
		} else {
			logger.Warn("api registry is unreadable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	for name, e := range loaded {
		s.entries[name] = e
	}
	return s
}

// Register добавляет или перезаписывает учётку name и сразу сохраняет весь реестр.
// Ошибка сохранения не откатывает регистрацию: учётка остаётся доступной до конца процесса.
func (s *Store) Register(name, apiID, apiHash string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("api name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = entry{APIID: strings.TrimSpace(apiID), APIHash: strings.TrimSpace(apiHash)}
	if err := storage.WriteJSON(s.path, s.entries); err != nil {
		return errors.Wrap(err, "save api registry")
	}
	return nil
}

// Get возвращает учётку по имени.
func (s *Store) Get(name string) (API, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return API{}, false
	}
	return API{Name: name, APIID: e.APIID, APIHash: e.APIHash}, true
}

// List возвращает имена всех учёток, отсортированные по алфавиту.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
