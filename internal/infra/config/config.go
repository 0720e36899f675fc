// Пакет config отвечает за сбор и предоставление конфигурации менеджера сессий.
// Он:
//  1. подхватывает переменные окружения из .env (через godotenv), если файл есть,
//  2. раскладывает окружение по структуре EnvConfig (caarlos0/env, значения по умолчанию в тегах),
//  3. нормализует и валидирует значения, накапливая предупреждения вместо падения,
//  4. вычисляет производные пути (каталоги сессий и base64 по библиотекам, файл дневного лога).
//
// Флагов командной строки у утилиты нет: всё, что не задано окружением, берётся из дефолтов.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// EnvConfig описывает параметры, приходящие из окружения (.env). Это «операционные»
// настройки запуска: расположение сессий и файла с API, логирование, параметры MTProto‑клиента.
type EnvConfig struct {
	SessionsDir   string `env:"SESSIONS_DIR" envDefault:"sessions"`
	Base64Dir     string `env:"BASE64_DIR" envDefault:"base64_strings"`
	APIConfigFile string `env:"API_CONFIG_FILE" envDefault:"api_configs.json"`
	// Логирование: консоль и дневной файл
	LogLevel          string `env:"LOG_LEVEL" envDefault:"warn"`
	LogDir            string `env:"LOG_DIR" envDefault:"logs"`
	LogFileLevel      string `env:"LOG_FILE_LEVEL" envDefault:"info"`
	LogFileMaxSize    int    `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"50"`
	LogFileMaxBackups int    `env:"LOG_FILE_MAX_BACKUPS" envDefault:"0"`
	LogFileMaxAge     int    `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"0"`
	LogFileCompress   bool   `env:"LOG_FILE_COMPRESS" envDefault:"false"`
	// MTProto‑клиент
	ThrottleRPS   int    `env:"THROTTLE_RPS" envDefault:"5"`
	TestDC        bool   `env:"TEST_DC" envDefault:"false"`
	DeviceModel   string `env:"DEVICE_MODEL" envDefault:"Desktop"`
	SystemVersion string `env:"SYSTEM_VERSION" envDefault:""`
	AppVersion    string `env:"APP_VERSION" envDefault:"1.0"`
	LangCode      string `env:"LANG_CODE" envDefault:"ko"`
}

// Config хранит конфигурацию среды и предупреждения, накопленные при загрузке.
type Config struct {
	Env      EnvConfig
	warnings []string
}

const (
	defaultLogLevel     = "warn"
	defaultLogFileLevel = "info"
	defaultThrottleRPS  = 5
	defaultLogFileSize  = 50
	dirPerm             = 0o700
)

// Load — точка входа для инициализации конфигурации. Отсутствующий .env не ошибка:
// утилита обязана запускаться «из коробки», в этом случае пишется предупреждение.
// Ошибкой считается только нечитаемый .env или окружение, которое нельзя разобрать.
func Load(envPath string) (*Config, error) {
	var warnings []string

	if _, statErr := os.Stat(envPath); statErr == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	} else {
		appendWarningf(&warnings, "env file %q not found; using process environment and defaults", envPath)
	}

	var cfgEnv EnvConfig
	if err := env.Parse(&cfgEnv); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	cfgEnv.LogLevel = sanitizeLogLevel("LOG_LEVEL", cfgEnv.LogLevel, defaultLogLevel, &warnings)
	cfgEnv.LogFileLevel = sanitizeLogLevel("LOG_FILE_LEVEL", cfgEnv.LogFileLevel, defaultLogFileLevel, &warnings)
	cfgEnv.ThrottleRPS = sanitizeInt("THROTTLE_RPS", cfgEnv.ThrottleRPS, defaultThrottleRPS, greaterThanZero, &warnings)
	cfgEnv.LogFileMaxSize = sanitizeInt("LOG_FILE_MAX_SIZE_MB", cfgEnv.LogFileMaxSize, defaultLogFileSize,
		greaterThanZero, &warnings)
	cfgEnv.LogFileMaxBackups = sanitizeInt("LOG_FILE_MAX_BACKUPS", cfgEnv.LogFileMaxBackups, 0, nonNegative, &warnings)
	cfgEnv.LogFileMaxAge = sanitizeInt("LOG_FILE_MAX_AGE_DAYS", cfgEnv.LogFileMaxAge, 0, nonNegative, &warnings)
	cfgEnv.SessionsDir = sanitizePath("SESSIONS_DIR", cfgEnv.SessionsDir, "sessions", &warnings)
	cfgEnv.Base64Dir = sanitizePath("BASE64_DIR", cfgEnv.Base64Dir, "base64_strings", &warnings)
	cfgEnv.APIConfigFile = sanitizePath("API_CONFIG_FILE", cfgEnv.APIConfigFile, "api_configs.json", &warnings)
	cfgEnv.LogDir = sanitizePath("LOG_DIR", cfgEnv.LogDir, "logs", &warnings)

	return &Config{Env: cfgEnv, warnings: warnings}, nil
}

// Warnings возвращает накопленные предупреждения, возникшие при загрузке окружения
// (например, когда подставлено значение по умолчанию). Возвращается копия.
func (c *Config) Warnings() []string {
	result := make([]string, len(c.warnings))
	copy(result, c.warnings)
	return result
}

// SessionDir возвращает каталог сессий конкретной библиотеки.
func (c *Config) SessionDir(library string) string {
	return filepath.Join(c.Env.SessionsDir, library)
}

// Base64Dir возвращает каталог экспортированных base64-строк конкретной библиотеки.
func (c *Config) Base64Dir(library string) string {
	return filepath.Join(c.Env.Base64Dir, library)
}

// LogFile возвращает путь к журналу за календарный день now: logs/session_YYYYMMDD.log.
func (c *Config) LogFile(now time.Time) string {
	return filepath.Join(c.Env.LogDir, "session_"+now.Format("20060102")+".log")
}

// EnsureLayout создаёт каталоги сессий и base64 для каждой библиотеки, а также каталог логов.
func (c *Config) EnsureLayout(libraries []string) error {
	dirs := []string{c.Env.LogDir}
	for _, lib := range libraries {
		dirs = append(dirs, c.SessionDir(lib), c.Base64Dir(lib))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

// appendWarningf — служебная функция для накопления предупреждений о некорректных
// переменных окружения. Список затем доступен через Warnings().
func appendWarningf(warnings *[]string, format string, args ...any) {
	if warnings == nil {
		return
	}
	*warnings = append(*warnings, fmt.Sprintf(format, args...))
}

func greaterThanZero(v int) bool { return v > 0 }
func nonNegative(v int) bool     { return v >= 0 }

// sanitizeInt возвращает v, если оно проходит validator, иначе defaultVal с предупреждением.
func sanitizeInt(name string, v, defaultVal int, validator func(int) bool, warnings *[]string) int {
	if validator != nil && !validator(v) {
		appendWarningf(warnings, "env %s value %d does not satisfy constraints; using default %d", name, v, defaultVal)
		return defaultVal
	}
	return v
}

// sanitizeLogLevel нормализует уровень и ограничивает значения набором
// {debug, info, warn, error}. Всё остальное превращается в defaultVal.
func sanitizeLogLevel(name, level, defaultVal string, warnings *[]string) string {
	lvl := strings.ToLower(strings.TrimSpace(level))
	switch lvl {
	case "debug", "info", "warn", "error":
		return lvl
	default:
		appendWarningf(warnings, "env %s value %q is invalid; using default %q", name, level, defaultVal)
		return defaultVal
	}
}

// sanitizePath подставляет fallback вместо пустого пути.
func sanitizePath(name, value, fallback string, warnings *[]string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		appendWarningf(warnings, "env %s is empty; using default %q", name, fallback)
		return fallback
	}
	return filepath.Clean(v)
}
