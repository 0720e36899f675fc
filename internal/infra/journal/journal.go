// Package journal ведёт журнал событий менеджера сессий: создание сессий,
// попытки авторизации, резервные копии, регистрация API и ошибки.
// Записи структурированные и попадают в общий zap-логгер (а значит, и в дневной файл).
package journal

import (
	"go.uber.org/zap"
)

// Name — имя логгера, под которым пишутся события.
const Name = "SessionManager"

// Journal — тонкая обёртка над *zap.Logger с фиксированным набором событий.
type Journal struct {
	log *zap.Logger
}

// New создаёт журнал поверх переданного логгера. nil даёт no-op журнал.
func New(log *zap.Logger) *Journal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Journal{log: log.Named(Name)}
}

// SessionCreated фиксирует итог создания сессии для пары (библиотека, телефон).
func (j *Journal) SessionCreated(library, phone string, ok bool) {
	if ok {
		j.log.Info("session created", zap.String("library", library), zap.String("phone", phone))
		return
	}
	j.log.Error("session creation failed", zap.String("library", library), zap.String("phone", phone))
}

// Authentication фиксирует попытку ввода кода. ok=false — код не введён.
func (j *Journal) Authentication(phone string, attempt int, ok bool) {
	if ok {
		j.log.Info("authentication attempt", zap.String("phone", phone), zap.Int("attempt", attempt))
		return
	}
	j.log.Warn("authentication attempt without code", zap.String("phone", phone), zap.Int("attempt", attempt))
}

// Backup фиксирует создание резервной копии артефакта сессии.
func (j *Journal) Backup(originalPath, backupPath string) {
	j.log.Info("session backup", zap.String("original", originalPath), zap.String("backup", backupPath))
}

// APIRegistered фиксирует регистрацию (или перерегистрацию) API-учётки.
func (j *Journal) APIRegistered(name string) {
	j.log.Info("api registered", zap.String("name", name))
}

// Failure фиксирует произвольную ошибку прогона.
func (j *Journal) Failure(msg string, fields ...zap.Field) {
	j.log.Error(msg, fields...)
}
