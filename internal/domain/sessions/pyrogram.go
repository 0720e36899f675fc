package sessions

import (
	"context"
	"path/filepath"
	"time"

	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/sessionfile"
	"telegram-session-manager/internal/infra/storage"
	tgsession "telegram-session-manager/internal/infra/telegram/session"

	"github.com/go-faster/errors"
	boltstor "github.com/gotd/contrib/bbolt"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	pyrogramBucket = "sessions"
	dbOpenTimeout  = time.Second
)

// PyrogramManager хранит сессию в bbolt-базе <dir>/<key>.session: бакет "sessions",
// ключ — имя сессии. Файл базы бинарный и непрозрачный для остальных форматов.
type PyrogramManager struct {
	base
}

var _ Manager = (*PyrogramManager)(nil)

func (m *PyrogramManager) ArtifactPath(phone string) string {
	return filepath.Join(m.dir, m.key(phone)+".session")
}

func (m *PyrogramManager) openDB(path string, readOnly bool) (*bbolt.DB, error) {
	if !readOnly {
		if err := storage.EnsureDir(path); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(path, storage.DefaultFilePerm, &bbolt.Options{Timeout: dbOpenTimeout, ReadOnly: readOnly})
	if err != nil {
		return nil, errors.Wrap(err, "open session db")
	}
	return db, nil
}

func (m *PyrogramManager) CreateSession(ctx context.Context, phone string, prompts Prompts) bool {
	path := m.ArtifactPath(phone)
	existed := sessionfile.Exists(path)

	db, err := m.openDB(path, false)
	if err != nil {
		return m.fail(phone, err)
	}
	st := boltstor.NewSessionStorage(db, m.key(phone), []byte(pyrogramBucket))

	loginErr := m.login(ctx, phone, prompts, &st, nil)
	closeErr := db.Close()

	if loginErr != nil {
		// bbolt создаёт непустой файл уже при открытии; не оставляем его после неудачи,
		// иначе файловая проверка сочтёт пустую базу валидной сессией.
		m.discardFresh(path, existed)
		return m.fail(phone, loginErr)
	}
	if closeErr != nil {
		return m.fail(phone, errors.Wrap(closeErr, "close session db"))
	}
	return true
}

func (m *PyrogramManager) SessionToString(phone string) (string, bool) {
	return m.exportFile(m.ArtifactPath(phone))
}

func (m *PyrogramManager) ValidateSession(phone string) bool {
	return sessionfile.Validate(m.ArtifactPath(phone))
}

func (m *PyrogramManager) GetSessionInfo(phone string) *Info {
	if !m.ValidateSession(phone) {
		return nil
	}
	path := m.ArtifactPath(phone)
	info := &Info{
		Library:     m.library,
		Phone:       phone,
		Valid:       true,
		Type:        "user",
		SessionPath: path,
	}

	db, err := m.openDB(path, true)
	if err != nil {
		logger.Debug("session db is not readable", zap.String("path", path), zap.Error(err))
		return info
	}
	defer func() { _ = db.Close() }()

	st := boltstor.NewSessionStorage(db, m.key(phone), []byte(pyrogramBucket))
	if data, err := tgsession.Describe(context.Background(), &st); err == nil {
		info.DC = data.DC
	}
	return info
}
