package sessions

import (
	"context"
	"path/filepath"
	"strings"

	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/sessionfile"
	"telegram-session-manager/internal/infra/storage"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// botSession — схема JSON-артефакта бот‑сессии.
type botSession struct {
	BotToken    string `json:"bot_token"`
	PhoneNumber string `json:"phone_number"`
	APIID       string `json:"api_id"`
	APIHash     string `json:"api_hash"`
	Type        string `json:"type"`
}

// BotManager — вырожденный формат для бот‑аккаунтов: входа по коду нет,
// единственный переход — сохранить введённый токен в <dir>/<key>.json.
type BotManager struct {
	base
}

var _ Manager = (*BotManager)(nil)

func (m *BotManager) ArtifactPath(phone string) string {
	return filepath.Join(m.dir, m.key(phone)+".json")
}

// CreateSession запрашивает токен бота. Пустой токен — осознанный пропуск, возвращается false.
func (m *BotManager) CreateSession(ctx context.Context, phone string, prompts Prompts) bool {
	if prompts.BotToken == nil {
		return m.fail(phone, errors.New("bot token prompt is not configured"))
	}
	token, err := prompts.BotToken(ctx)
	if err != nil {
		return m.fail(phone, errors.Wrap(err, "read bot token"))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		logger.Info("bot token skipped", zap.String("phone", phone))
		return false
	}

	doc := botSession{
		BotToken:    token,
		PhoneNumber: phone,
		APIID:       m.api.APIID,
		APIHash:     m.api.APIHash,
		Type:        "bot",
	}
	if err := storage.WriteJSON(m.ArtifactPath(phone), doc); err != nil {
		return m.fail(phone, errors.Wrap(err, "store bot session"))
	}
	return true
}

func (m *BotManager) SessionToString(phone string) (string, bool) {
	return m.exportFile(m.ArtifactPath(phone))
}

// ValidateSession помимо файловой проверки требует непустое поле bot_token.
func (m *BotManager) ValidateSession(phone string) bool {
	path := m.ArtifactPath(phone)
	if !sessionfile.Validate(path) {
		return false
	}
	var doc botSession
	if err := storage.ReadJSON(path, &doc); err != nil {
		logger.Warn("bot session is unreadable", zap.String("path", path), zap.Error(err))
		return false
	}
	return doc.BotToken != ""
}

func (m *BotManager) GetSessionInfo(phone string) *Info {
	if !m.ValidateSession(phone) {
		return nil
	}
	return &Info{
		Library:     m.library,
		Phone:       phone,
		Valid:       true,
		Type:        "bot",
		SessionPath: m.ArtifactPath(phone),
	}
}
