package sessions

import (
	"path/filepath"
	"strings"
	"time"

	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/domain/credentials"
	"telegram-session-manager/internal/infra/logger"

	"go.uber.org/zap"
)

// NewManager выбирает реализацию по имени формата (без учёта регистра).
// Неизвестное имя — не ошибка, а nil и запись в лог: вызывающий пропускает пару.
func NewManager(library string, api credentials.API, opts Options) Manager {
	lib := Library(strings.ToLower(strings.TrimSpace(library)))
	if !lib.Valid() {
		logger.Warn("unsupported library", zap.String("library", library))
		return nil
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = core.GotdDialer{ThrottleRPS: 1}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	b := base{
		library: lib,
		api:     api,
		dir:     filepath.Join(opts.Root, string(lib)),
		dialer:  dialer,
		now:     now,
	}

	switch lib {
	case Telethon:
		return &TelethonManager{base: b}
	case Pyrogram:
		return &PyrogramManager{base: b}
	case TelegramBot:
		return &BotManager{base: b}
	case TDLib:
		return &TDLibManager{base: b}
	default:
		return nil
	}
}
