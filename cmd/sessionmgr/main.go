package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"telegram-session-manager/internal/adapters/cli"
	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/app"
	"telegram-session-manager/internal/domain/credentials"
	"telegram-session-manager/internal/domain/report"
	"telegram-session-manager/internal/domain/sessions"
	"telegram-session-manager/internal/infra/config"
	"telegram-session-manager/internal/infra/journal"
	"telegram-session-manager/internal/infra/logger"
	"telegram-session-manager/internal/infra/pr"

	"github.com/gotd/td/telegram"
)

// envPath — необязательный .env рядом с бинарником; флагов у утилиты нет.
const envPath = ".env"

func main() {
	cfg, err := config.Load(envPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	env := cfg.Env

	logger.Init(env.LogLevel)
	logger.AttachFile(logger.FileOptions{
		Path:       cfg.LogFile(time.Now()),
		Level:      env.LogFileLevel,
		MaxSizeMB:  env.LogFileMaxSize,
		MaxBackups: env.LogFileMaxBackups,
		MaxAgeDays: env.LogFileMaxAge,
		Compress:   env.LogFileCompress,
	})
	defer logger.Close()
	for _, msg := range cfg.Warnings() {
		logger.Warn(msg)
	}

	libs := make([]string, 0, len(sessions.Libraries()))
	for _, lib := range sessions.Libraries() {
		libs = append(libs, string(lib))
	}
	if err := cfg.EnsureLayout(libs); err != nil {
		logger.Error("failed to prepare directories", zap.Error(err))
		return
	}

	// pr.Init переводит stdout/stderr на readline, туда же направляем консольный лог.
	if err := pr.Init(); err != nil {
		logger.Error("failed to init terminal", zap.Error(err))
		return
	}
	defer pr.Close()
	logger.SetWriters(pr.Stdout(), pr.Stderr())

	// Контекст отменяется по Ctrl+C/SIGTERM; stop() снимает подписку на сигналы.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// Будим readline, если оператор сейчас на приглашении.
		pr.InterruptReadline()
	}()

	dialer := core.GotdDialer{
		ThrottleRPS: env.ThrottleRPS,
		TestDC:      env.TestDC,
		Device: telegram.DeviceConfig{
			DeviceModel:    env.DeviceModel,
			SystemVersion:  env.SystemVersion,
			AppVersion:     env.AppVersion,
			SystemLangCode: env.LangCode,
			LangCode:       env.LangCode,
		},
		Logger: logger.Named("mtproto"),
	}

	a := app.New(
		cfg,
		credentials.Open(env.APIConfigFile),
		cli.NewPrompter(pr.Rl(), stop),
		dialer,
		journal.New(logger.Direct()),
	)
	// Код выхода всегда 0: ошибки прогона уже залогированы и показаны оператору.
	if err := a.Run(ctx, report.NewCollector()); err != nil {
		logger.Debug("run finished with error", zap.Error(err))
	}
}
