package session

// Пакет session содержит обёртки поверх tdsession.Storage для MTProto‑сессий.
// Цели:
//   - атомарная запись файла сессии на диск (без частичных состояний);
//   - потокобезопасный доступ к файлу при конкурирующих вызовах gotd;
//   - чтение сохранённой сессии вне клиента (для отчёта о DC и ключе).

import (
	"context"
	"fmt"
	"os"
	"sync"

	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/storage"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	tdsession "github.com/gotd/td/session"
)

// FileStorage реализует tdsession.Storage поверх обычного файла.
// Потокобезопасен: операции Load/Store защищены мьютексом. Поле Path указывает
// абсолютный или относительный путь до файла сессии на диске.
type FileStorage struct {
	Path string
	mux  sync.Mutex
}

// Компиляторная проверка соответствия интерфейсу tdsession.Storage.
var _ tdsession.Storage = (*FileStorage)(nil)

// LoadSession читает файл сессии с диска. Пустой файл трактуется как отсутствие сессии.
func (f *FileStorage) LoadSession(_ context.Context) ([]byte, error) {
	if f == nil {
		return nil, errors.New("nil session storage is invalid")
	}
	f.mux.Lock()
	defer f.mux.Unlock()

	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		return nil, tdsession.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session")
	}
	return data, nil
}

// StoreSession атомарно сохраняет данные сессии на диск.
func (f *FileStorage) StoreSession(_ context.Context, data []byte) error {
	if f == nil {
		return errors.New("nil session storage is invalid")
	}

	f.mux.Lock()
	defer f.mux.Unlock()

	if err := storage.AtomicWriteFile(f.Path, data); err != nil {
		return fmt.Errorf("atomic write session: %w", err)
	}
	logger.Debug("StoreSession: session persisted", zap.String("path", f.Path), zap.Int("bytes", len(data)))
	return nil
}

// Describe загружает сохранённую сессию из любого tdsession.Storage и возвращает
// её расшифрованные поля (DC, адрес, идентификатор ключа). Ошибка tdsession.ErrNotFound
// означает, что сессия ещё не записана.
func Describe(ctx context.Context, st tdsession.Storage) (*tdsession.Data, error) {
	loader := tdsession.Loader{Storage: st}
	data, err := loader.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	return data, nil
}
