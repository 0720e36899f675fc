// Package sessionfile — утилиты жизненного цикла файлов сессий:
// вычисление имени сессии по номеру телефона, экспорт/импорт в base64,
// проверка наличия и резервное копирование перед перезаписью.
//
// Проверки здесь только файловые: содержимое сессии не разбирается.
package sessionfile

import (
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"telegram-session-manager/internal/infra/storage"

	"github.com/go-faster/errors"
)

// nameDigits — сколько последних цифр телефона образуют имя сессии.
const nameDigits = 8

// backupLayout — суффикс резервной копии с точностью до секунды.
const backupLayout = "20060102_150405"

// Name возвращает ключ сессии: последние 8 цифр номера (или все цифры, если их меньше).
// Ключ с потерями: два номера с одинаковым «хвостом» дадут одно имя.
func Name(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		// Только ASCII-цифры: цифры других алфавитов в имя файла не пускаем.
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) >= nameDigits {
		return digits[len(digits)-nameDigits:]
	}
	return digits
}

// Encode читает файл целиком и возвращает его содержимое в стандартном base64.
func Encode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read session file")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode раскодирует base64-строку и записывает байты в outPath, создавая каталоги.
func Decode(encoded, outPath string) error {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return errors.Wrap(err, "decode base64")
	}
	if err := storage.AtomicWriteFile(outPath, data); err != nil {
		return errors.Wrap(err, "write session file")
	}
	return nil
}

// SaveString сохраняет base64-строку текстом в outPath.
func SaveString(encoded, outPath string) error {
	if err := storage.AtomicWriteFile(outPath, []byte(encoded)); err != nil {
		return errors.Wrap(err, "save base64 string")
	}
	return nil
}

// Exists сообщает, есть ли что-либо по пути path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Validate — единственный признак валидности сессии: файл есть и он не пустой.
// Для каталога достаточно существования.
func Validate(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}
	return info.Size() > 0
}

// Backup копирует path в соседний <path>.backup_<YYYYMMDD_HHMMSS> с сохранением прав и mtime.
func Backup(path string) (string, error) {
	return BackupAt(path, time.Now())
}

// BackupAt — Backup с явным временем. Копия в ту же секунду молча перезаписывает предыдущую.
// Оригинал никогда не удаляется. Каталоги копируются рекурсивно.
func BackupAt(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(err, "stat session artifact")
	}
	backupPath := fmt.Sprintf("%s.backup_%s", path, now.Format(backupLayout))

	if info.IsDir() {
		if err := os.RemoveAll(backupPath); err != nil {
			return "", errors.Wrap(err, "clear previous backup")
		}
		if err := copyDir(path, backupPath); err != nil {
			return "", err
		}
		return backupPath, nil
	}
	if err := copyFile(path, backupPath, info); err != nil {
		return "", err
	}
	return backupPath, nil
}

// copyFile копирует содержимое, права и время модификации (аналог cp -p).
func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "open source")
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, "create backup")
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrap(err, "copy data")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "close backup")
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrap(err, "chmod backup")
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrap(err, "chtimes backup")
	}
	return nil
}

// copyDir рекурсивно копирует дерево src в dst.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(p, target, info)
	})
}
