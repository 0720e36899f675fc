package sessions

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/sessionfile"
	"telegram-session-manager/internal/infra/storage"
	tgsession "telegram-session-manager/internal/infra/telegram/session"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const (
	tdlibSessionFile = "td.session"
	tdlibFilesDir    = "files"
)

// tdlibMeta — схема файла-компаньона <key>_info.json.
type tdlibMeta struct {
	PhoneNumber string    `json:"phone_number"`
	APIID       string    `json:"api_id"`
	APIHash     string    `json:"api_hash"`
	DBPath      string    `json:"db_path"`
	Library     Library   `json:"library"`
	UserID      int64     `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TDLibManager хранит сессию каталогом базы <dir>/<key>/ (сессия + files/) и
// метаданными <dir>/<key>_info.json, которые пишутся только после успешного входа.
type TDLibManager struct {
	base
}

var _ Manager = (*TDLibManager)(nil)

// ArtifactPath — каталог базы данных сессии.
func (m *TDLibManager) ArtifactPath(phone string) string {
	return filepath.Join(m.dir, m.key(phone))
}

func (m *TDLibManager) infoPath(phone string) string {
	return filepath.Join(m.dir, m.key(phone)+"_info.json")
}

// SidecarPaths — файл метаданных; он экспортируется и перезаписывается вместе с базой.
func (m *TDLibManager) SidecarPaths(phone string) []string {
	return []string{m.infoPath(phone)}
}

func (m *TDLibManager) CreateSession(ctx context.Context, phone string, prompts Prompts) bool {
	dbPath := m.ArtifactPath(phone)
	existed := sessionfile.Exists(dbPath)
	if err := os.MkdirAll(filepath.Join(dbPath, tdlibFilesDir), 0o700); err != nil {
		return m.fail(phone, errors.Wrap(err, "create database directory"))
	}
	st := &tgsession.FileStorage{Path: filepath.Join(dbPath, tdlibSessionFile)}

	err := m.login(ctx, phone, prompts, st, func(ctx context.Context, conn core.Conn) error {
		meta := tdlibMeta{
			PhoneNumber: phone,
			APIID:       m.api.APIID,
			APIHash:     m.api.APIHash,
			DBPath:      dbPath,
			Library:     m.library,
			CreatedAt:   m.now(),
		}
		// Self нужен только для отчёта; его отказ не отменяет состоявшийся вход.
		if self, selfErr := conn.Self(ctx); selfErr == nil {
			meta.UserID = self.ID
			meta.Username = self.Username
		} else {
			logger.Warn("tdlib: fetch self failed", zap.String("phone", phone), zap.Error(selfErr))
		}
		return storage.WriteJSON(m.infoPath(phone), meta)
	})
	if err != nil {
		m.discardFresh(dbPath, existed)
		return m.fail(phone, err)
	}
	return true
}

// SessionToString экспортирует файл метаданных: он однозначно описывает сессию.
func (m *TDLibManager) SessionToString(phone string) (string, bool) {
	return m.exportFile(m.infoPath(phone))
}

// ValidateSession требует и каталог базы, и непустой файл метаданных.
func (m *TDLibManager) ValidateSession(phone string) bool {
	return sessionfile.Exists(m.ArtifactPath(phone)) && sessionfile.Validate(m.infoPath(phone))
}

func (m *TDLibManager) GetSessionInfo(phone string) *Info {
	if !m.ValidateSession(phone) {
		return nil
	}
	var meta tdlibMeta
	if err := storage.ReadJSON(m.infoPath(phone), &meta); err != nil {
		logger.Warn("tdlib metadata is unreadable", zap.String("phone", phone), zap.Error(err))
		return nil
	}
	return &Info{
		Library:     m.library,
		Phone:       meta.PhoneNumber,
		Valid:       true,
		Type:        "user",
		SessionPath: filepath.Join(meta.DBPath, tdlibSessionFile),
		UserID:      meta.UserID,
		Username:    meta.Username,
		DBPath:      meta.DBPath,
		APIID:       meta.APIID,
		APIHash:     meta.APIHash,
		CreatedAt:   meta.CreatedAt,
	}
}
