// Package sessions — единый контракт создания и экспорта сессий Telegram для четырёх
// форматов («библиотек»): telethon, pyrogram, telegram-bot и tdlib.
//
// Каждая реализация Manager владеет своим каталогом <root>/<library> и по-своему хранит
// артефакт: файл, bbolt-базу, JSON с токеном или каталог с метаданными. Пользовательские
// варианты проводят настоящий вход через gotd (см. core.Dialer), бот‑вариант только
// сохраняет токен. Любая ошибка внешней библиотеки логируется и превращается в false.
package sessions

import (
	"context"
	"os"
	"strings"
	"time"

	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/domain/credentials"
	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/sessionfile"

	"github.com/go-faster/errors"
	tdsession "github.com/gotd/td/session"
	"go.uber.org/zap"
)

// Library — имя поддерживаемого формата сессии.
type Library string

const (
	Telethon    Library = "telethon"
	Pyrogram    Library = "pyrogram"
	TelegramBot Library = "telegram-bot"
	TDLib       Library = "tdlib"
)

// Libraries возвращает фиксированный список форматов в порядке меню.
func Libraries() []Library {
	return []Library{Telethon, Pyrogram, TelegramBot, TDLib}
}

// Valid сообщает, входит ли l в список поддерживаемых форматов.
func (l Library) Valid() bool {
	switch l {
	case Telethon, Pyrogram, TelegramBot, TDLib:
		return true
	default:
		return false
	}
}

// PromptFunc блокируется до получения значения от оператора.
type PromptFunc func(ctx context.Context) (string, error)

// Prompts — колбэки интерактивного ввода, которые вызывающий передаёт в CreateSession.
// Code и Password нужны пользовательским форматам, BotToken — только telegram-bot.
type Prompts struct {
	Code     PromptFunc
	Password PromptFunc
	BotToken PromptFunc
}

// Info — сведения о сохранённой сессии. Набор заполненных полей зависит от формата.
type Info struct {
	Library     Library   `json:"library"`
	Phone       string    `json:"phone_number"`
	Valid       bool      `json:"valid"`
	Type        string    `json:"type,omitempty"`
	SessionPath string    `json:"session_path,omitempty"`
	DC          int       `json:"dc,omitempty"`
	UserID      int64     `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	DBPath      string    `json:"db_path,omitempty"`
	APIID       string    `json:"api_id,omitempty"`
	APIHash     string    `json:"api_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Manager — общий контракт формата сессии.
type Manager interface {
	// Library возвращает имя формата.
	Library() Library
	// ArtifactPath возвращает путь к основному артефакту сессии для телефона (файл или каталог).
	ArtifactPath(phone string) string
	// CreateSession проводит вход и сохраняет сессию. Единственная операция с сетевыми
	// побочными эффектами; блокируется на вводе оператора и сетевых вызовах.
	CreateSession(ctx context.Context, phone string, prompts Prompts) bool
	// SessionToString возвращает base64 артефакта; false, если экспорт невозможен.
	SessionToString(phone string) (string, bool)
	// ValidateSession проверяет наличие артефакта.
	ValidateSession(phone string) bool
	// GetSessionInfo возвращает сведения о сессии или nil, если сессия невалидна.
	GetSessionInfo(phone string) *Info
}

// sidecars реализуют форматы, у которых кроме основного артефакта есть файлы-компаньоны.
type sidecars interface {
	SidecarPaths(phone string) []string
}

// ArtifactPaths возвращает основной артефакт и все файлы-компаньоны сессии телефона.
func ArtifactPaths(m Manager, phone string) []string {
	paths := []string{m.ArtifactPath(phone)}
	if s, ok := m.(sidecars); ok {
		paths = append(paths, s.SidecarPaths(phone)...)
	}
	return paths
}

// Options — общие зависимости всех форматов.
type Options struct {
	Root   string           // корень каталогов сессий; формат получает Root/<library>
	Dialer core.Dialer      // соединение с Telegram; nil — gotd с настройками по умолчанию
	Now    func() time.Time // часы для меток времени в метаданных; nil — time.Now
}

// base — общая часть всех реализаций.
type base struct {
	library Library
	api     credentials.API
	dir     string
	dialer  core.Dialer
	now     func() time.Time
}

func (b *base) Library() Library { return b.library }

// key возвращает имя сессии для телефона.
func (b *base) key(phone string) string { return sessionfile.Name(phone) }

// exportFile кодирует файл в base64, превращая ошибку в false.
func (b *base) exportFile(path string) (string, bool) {
	encoded, err := sessionfile.Encode(path)
	if err != nil {
		logger.Warn("session export failed",
			zap.String("library", string(b.library)), zap.String("path", path), zap.Error(err))
		return "", false
	}
	return encoded, true
}

// login открывает соединение поверх st, проводит вход по автомату loginFlow и,
// если вход удался, вызывает after (может быть nil) в том же соединении.
func (b *base) login(
	ctx context.Context,
	phone string,
	prompts Prompts,
	st tdsession.Storage,
	after func(ctx context.Context, conn core.Conn) error,
) error {
	if strings.TrimSpace(phone) == "" {
		return errors.New("phone number is empty")
	}
	flow := newLoginFlow(b.library, phone, prompts)
	err := b.dialer.Dial(ctx, b.api, st, func(ctx context.Context, conn core.Conn) error {
		if err := flow.run(ctx, conn); err != nil {
			return err
		}
		if after != nil {
			return after(ctx, conn)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if flow.State() != StateAuthorized {
		return errors.Errorf("login finished in state %s", flow.State())
	}
	return nil
}

// fail логирует ошибку создания сессии и возвращает false — единая политика всех форматов.
func (b *base) fail(phone string, err error) bool {
	logger.Error("session creation failed",
		zap.String("library", string(b.library)),
		zap.String("phone", phone),
		zap.Error(err),
	)
	return false
}

// discardFresh удаляет артефакт, созданный неудачной попыткой входа. Сессия, существовавшая
// до попытки, не трогается.
func (b *base) discardFresh(path string, existed bool) {
	if existed {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		logger.Warn("remove unfinished session", zap.String("path", path), zap.Error(err))
	}
}
