package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/domain/credentials"
	"telegram-session-manager/internal/domain/report"
	"telegram-session-manager/internal/domain/sessions"
	"telegram-session-manager/internal/infra/config"
	"telegram-session-manager/internal/infra/journal"
	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/pr"
	"telegram-session-manager/internal/infra/sessionfile"

	"go.uber.org/zap"
)

const (
	// MaxRetryAttempts — число попыток создания сессии для одной пары (формат, телефон).
	MaxRetryAttempts = 3
	// base64PreviewLen — сколько символов base64 показывать оператору.
	base64PreviewLen = 50
)

// Runner создаёт сессии для всех выбранных пар (формат, телефон).
// Отвечает за:
//   - резервную копию существующего артефакта перед перезаписью,
//   - ограниченное число попыток со свежим запросом кода на каждой,
//   - экспорт base64 после успеха и запись итогов в журнал.
type Runner struct {
	cfg      *config.Config
	prompter Prompter
	dialer   core.Dialer // nil — форматы поднимают gotd с настройками по умолчанию
	journal  *journal.Journal
}

func NewRunner(cfg *config.Config, prompter Prompter, dialer core.Dialer, j *journal.Journal) *Runner {
	return &Runner{cfg: cfg, prompter: prompter, dialer: dialer, journal: j}
}

// Run обходит пары строго последовательно: форматы — внешний цикл, телефоны — внутренний.
// Каждая пара даёт ровно одну запись в results. Прерывание останавливает обход и возвращается как ошибка.
func (r *Runner) Run(
	ctx context.Context,
	api credentials.API,
	libs []sessions.Library,
	phones []string,
	results *report.Collector,
) error {
	total := len(libs) * len(phones)
	current := 0

	pr.Println()
	pr.Title("Creating %d session(s)...", total)
	pr.Println(strings.Repeat("=", 60))

	for _, lib := range libs {
		for _, phone := range phones {
			if err := ctx.Err(); err != nil {
				return err
			}
			current++
			pr.Println()
			pr.Info("[%d/%d] processing...", current, total)

			ok := r.createOne(ctx, api, lib, phone)
			results.Add(report.Record{Library: string(lib), Phone: phone, Success: ok})

			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

// createOne — одна пара: фабрика → резервная копия → до MaxRetryAttempts попыток → экспорт base64.
func (r *Runner) createOne(ctx context.Context, api credentials.API, lib sessions.Library, phone string) bool {
	manager := sessions.NewManager(string(lib), api, sessions.Options{
		Root:   r.cfg.Env.SessionsDir,
		Dialer: r.dialer,
	})
	if manager == nil {
		pr.Error("%s: unsupported library", lib)
		r.journal.SessionCreated(string(lib), phone, false)
		return false
	}

	r.backupExisting(manager, phone)

	pr.Printf("\n[%s] %s: creating session...\n", lib, phone)
	for attempt := 1; attempt <= MaxRetryAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		if manager.CreateSession(ctx, phone, r.prompts(phone, attempt)) {
			pr.Success("Session created")
			r.journal.SessionCreated(string(lib), phone, true)
			r.exportBase64(manager, phone)
			if logger.IsDebugEnabled() {
				if info := manager.GetSessionInfo(phone); info != nil {
					pr.PP(info)
					logger.Debug("session info", zap.String("library", string(lib)), zap.String("info", pr.Pf(info)))
				}
			}
			return true
		}
		if ctx.Err() != nil {
			break
		}
		pr.Error("Attempt %d/%d failed", attempt, MaxRetryAttempts)
	}

	pr.Error("%s: session creation failed", phone)
	r.journal.SessionCreated(string(lib), phone, false)
	return false
}

// prompts собирает колбэки ввода для попытки attempt. Каждая попытка запрашивает свежий код.
func (r *Runner) prompts(phone string, attempt int) sessions.Prompts {
	return sessions.Prompts{
		Code: func(ctx context.Context) (string, error) {
			code, err := r.prompter.ReadLine(ctx, fmt.Sprintf("Verification code (%d/%d): ", attempt, MaxRetryAttempts))
			if err != nil {
				return "", err
			}
			r.journal.Authentication(phone, attempt, code != "")
			return code, nil
		},
		Password: func(ctx context.Context) (string, error) {
			return r.prompter.ReadSecret(ctx, fmt.Sprintf("2FA password (%d/%d): ", attempt, MaxRetryAttempts))
		},
		BotToken: func(ctx context.Context) (string, error) {
			return r.prompter.ReadSecret(ctx, fmt.Sprintf("Bot token (%d/%d): ", attempt, MaxRetryAttempts))
		},
	}
}

// backupExisting копирует уже существующие артефакты (для tdlib ещё и файл метаданных)
// перед перезаписью. Ошибка копирования не останавливает создание сессии.
func (r *Runner) backupExisting(manager sessions.Manager, phone string) {
	for _, path := range sessions.ArtifactPaths(manager, phone) {
		if !sessionfile.Exists(path) {
			continue
		}
		pr.Warn("Existing session found: %s", filepath.Base(path))
		backup, err := sessionfile.Backup(path)
		if err != nil {
			pr.Error("Backup failed: %v", err)
			r.journal.Failure("session backup failed", zap.String("path", path), zap.Error(err))
			continue
		}
		pr.Success("Backup saved: %s", filepath.Base(backup))
		r.journal.Backup(path, backup)
	}
}

// exportBase64 печатает начало base64-строки сессии и сохраняет её целиком в каталог base64.
func (r *Runner) exportBase64(manager sessions.Manager, phone string) {
	encoded, ok := manager.SessionToString(phone)
	if !ok {
		return
	}
	preview := encoded
	if len(preview) > base64PreviewLen {
		preview = preview[:base64PreviewLen] + "..."
	}
	pr.Info("Base64: %s", preview)

	lib := string(manager.Library())
	out := filepath.Join(r.cfg.Base64Dir(lib), sessionfile.Name(phone)+".txt")
	if err := sessionfile.SaveString(encoded, out); err != nil {
		r.journal.Failure("save base64 string failed", zap.String("path", out), zap.Error(err))
		return
	}
	logger.Debug("base64 string saved", zap.String("path", out))
}
