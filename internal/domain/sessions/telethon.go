package sessions

import (
	"context"
	"path/filepath"

	tgsession "telegram-session-manager/internal/infra/telegram/session"
	"telegram-session-manager/internal/infra/sessionfile"
)

// TelethonManager хранит сессию одним файлом <dir>/<key>.session.
type TelethonManager struct {
	base
}

var _ Manager = (*TelethonManager)(nil)

func (m *TelethonManager) ArtifactPath(phone string) string {
	return filepath.Join(m.dir, m.key(phone)+".session")
}

func (m *TelethonManager) storage(phone string) *tgsession.FileStorage {
	return &tgsession.FileStorage{Path: m.ArtifactPath(phone)}
}

// CreateSession пишет файл сессии уже после обмена ключами. Если вход не завершился,
// свежий файл удаляется: неавторизованный ключ не должен проходить файловую проверку.
func (m *TelethonManager) CreateSession(ctx context.Context, phone string, prompts Prompts) bool {
	path := m.ArtifactPath(phone)
	existed := sessionfile.Exists(path)
	if err := m.login(ctx, phone, prompts, m.storage(phone), nil); err != nil {
		m.discardFresh(path, existed)
		return m.fail(phone, err)
	}
	return true
}

func (m *TelethonManager) SessionToString(phone string) (string, bool) {
	return m.exportFile(m.ArtifactPath(phone))
}

func (m *TelethonManager) ValidateSession(phone string) bool {
	return sessionfile.Validate(m.ArtifactPath(phone))
}

// GetSessionInfo дополнительно расшифровывает сохранённую сессию, чтобы показать DC.
// Нечитаемая сессия не делает её невалидной: валидность только файловая.
func (m *TelethonManager) GetSessionInfo(phone string) *Info {
	if !m.ValidateSession(phone) {
		return nil
	}
	info := &Info{
		Library:     m.library,
		Phone:       phone,
		Valid:       true,
		Type:        "user",
		SessionPath: m.ArtifactPath(phone),
	}
	if data, err := tgsession.Describe(context.Background(), m.storage(phone)); err == nil {
		info.DC = data.DC
	}
	return info
}
