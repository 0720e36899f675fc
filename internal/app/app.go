// Package app — верхний уровень мастера создания сессий Telegram. Здесь связываются
// реестр API‑учёток, фабрика форматов сессий, терминальный ввод и журнал событий,
// и проводится весь интерактивный сценарий: выбор API → выбор форматов → ввод телефонов →
// последовательное создание сессий → сводка.
package app

import (
	"context"
	"strconv"
	"strings"

	"telegram-session-manager/internal/adapters/cli"
	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/domain/credentials"
	"telegram-session-manager/internal/domain/report"
	"telegram-session-manager/internal/domain/sessions"
	"telegram-session-manager/internal/infra/config"
	"telegram-session-manager/internal/infra/journal"
	"telegram-session-manager/internal/infra/pr"
	"telegram-session-manager/internal/shared"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Prompter — источник интерактивного ввода. Реализация по умолчанию — cli.Prompter.
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	ReadSecret(ctx context.Context, prompt string) (string, error)
}

// App агрегирует зависимости мастера.
type App struct {
	store    *credentials.Store
	prompter Prompter
	journal  *journal.Journal
	runner   *Runner // последовательное создание сессий по парам (формат, телефон)
}

// New собирает мастер. dialer может быть nil — тогда форматы используют gotd по умолчанию.
func New(cfg *config.Config, store *credentials.Store, prompter Prompter, dialer core.Dialer, j *journal.Journal) *App {
	if j == nil {
		j = journal.New(nil)
	}
	return &App{
		store:    store,
		prompter: prompter,
		journal:  j,
		runner:   NewRunner(cfg, prompter, dialer, j),
	}
}

// Run проводит сценарий целиком, складывая итоги в results. Прерывание оператором
// (Ctrl-C/Ctrl-D, SIGINT/SIGTERM) не ошибка: пишется в журнал, печатается частичная сводка,
// возвращается nil. Остальные ошибки и паника возвращаются вызывающему уже залогированными.
func (a *App) Run(ctx context.Context, results *report.Collector) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
			a.journal.Failure("unexpected failure", zap.Any("panic", r))
			pr.Error("Unexpected error: %v", r)
		}
	}()

	pr.Title("Telegram multi-session manager")
	pr.Println(strings.Repeat("=", 60))

	err = a.run(ctx, results)
	switch {
	case err == nil:
	case isInterrupted(ctx, err):
		pr.Warn("Interrupted by user")
		a.journal.Failure("interrupted by user")
		if results.Len() > 0 {
			a.printSummary(results.Summary(), results.Records())
		}
		err = nil
	default:
		pr.Error("Error: %v", err)
		a.journal.Failure("run failed", zap.Error(err))
	}
	pr.Info("Bye.")
	return err
}

func (a *App) run(ctx context.Context, results *report.Collector) error {
	api, err := a.selectOrRegisterAPI(ctx)
	if err != nil {
		return err
	}

	libs, err := a.selectLibraries(ctx)
	if err != nil {
		return err
	}
	if len(libs) == 0 {
		pr.Warn("No library selected.")
		return nil
	}

	phones, err := a.inputPhones(ctx)
	if err != nil {
		return err
	}
	if len(phones) == 0 {
		pr.Warn("No phone number entered.")
		return nil
	}

	if err := a.runner.Run(ctx, api, libs, phones, results); err != nil {
		return err
	}
	a.printSummary(results.Summary(), results.Records())
	return nil
}

// isInterrupted отличает прерывание оператором от прочих ошибок.
func isInterrupted(ctx context.Context, err error) bool {
	return errors.Is(err, cli.ErrInterrupted) || errors.Is(err, context.Canceled) || ctx.Err() != nil
}

// selectOrRegisterAPI показывает зарегистрированные учётки; номер вне списка ведёт к регистрации новой.
func (a *App) selectOrRegisterAPI(ctx context.Context) (credentials.API, error) {
	names := a.store.List()
	if len(names) > 0 {
		pr.Println()
		pr.Info("Registered APIs:")
		for i, name := range names {
			pr.Printf("  %d. %s\n", i+1, name)
		}
		pr.Printf("  %d. Register a new API\n", len(names)+1)

		choice, err := a.prompter.ReadLine(ctx, "Select: ")
		if err != nil {
			return credentials.API{}, err
		}
		if n, convErr := strconv.Atoi(choice); convErr == nil {
			if name, ok := shared.GetAt(names, n-1); ok {
				if api, found := a.store.Get(name); found {
					return api, nil
				}
			}
		}
	}

	pr.Println()
	pr.Warn("Register a new API")
	var name string
	for name == "" {
		var err error
		if name, err = a.prompter.ReadLine(ctx, "API name: "); err != nil {
			return credentials.API{}, err
		}
		if name == "" {
			pr.Warn("API name must not be empty")
		}
	}
	apiID, err := a.prompter.ReadLine(ctx, "API ID: ")
	if err != nil {
		return credentials.API{}, err
	}
	apiHash, err := a.prompter.ReadLine(ctx, "API hash: ")
	if err != nil {
		return credentials.API{}, err
	}
	if err := a.store.Register(name, apiID, apiHash); err != nil {
		// Учётка уже в памяти: текущий прогон продолжается, не сохранится только файл.
		pr.Error("Failed to save API config: %v", err)
		a.journal.Failure("api registration not saved", zap.String("name", name), zap.Error(err))
	} else {
		a.journal.APIRegistered(name)
		pr.Success("API %q registered", name)
	}
	return credentials.API{Name: name, APIID: apiID, APIHash: apiHash}, nil
}

var libraryTitles = map[sessions.Library]string{
	sessions.Telethon:    "Telethon (user session)",
	sessions.Pyrogram:    "Pyrogram (user session)",
	sessions.TelegramBot: "telegram-bot (bots only)",
	sessions.TDLib:       "TDLib (database directory)",
}

// selectLibraries читает номера форматов через запятую. Неизвестные номера
// пропускаются, повторы схлопываются, порядок ввода сохраняется.
func (a *App) selectLibraries(ctx context.Context) ([]sessions.Library, error) {
	all := sessions.Libraries()
	pr.Println()
	pr.Info("Select libraries (comma separated):")
	for i, lib := range all {
		pr.Printf("  %d. %s\n", i+1, libraryTitles[lib])
	}
	line, err := a.prompter.ReadLine(ctx, "Libraries (e.g. 1,2): ")
	if err != nil {
		return nil, err
	}

	selected := ParseLibraries(line)
	if len(selected) > 0 {
		names := make([]string, len(selected))
		for i, lib := range selected {
			names[i] = string(lib)
		}
		pr.Success("Selected: %s", strings.Join(names, ", "))
	}
	return selected, nil
}

// ParseLibraries разбирает ответ меню форматов: номера 1..4 в порядке sessions.Libraries().
func ParseLibraries(line string) []sessions.Library {
	all := sessions.Libraries()
	var selected []sessions.Library
	for _, part := range shared.SplitList(line, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if lib, ok := shared.GetAt(all, n-1); ok {
			selected = append(selected, lib)
		}
	}
	if len(selected) == 0 {
		return nil
	}
	return shared.Unique(selected)
}

func (a *App) inputPhones(ctx context.Context) ([]string, error) {
	pr.Println()
	pr.Info("Enter phone numbers (comma separated), e.g. +821012345678, +821087654321")
	line, err := a.prompter.ReadLine(ctx, "Phones: ")
	if err != nil {
		return nil, err
	}
	phones := ParsePhones(line)
	if len(phones) > 0 {
		pr.Success("%d phone number(s) entered", len(phones))
	}
	return phones, nil
}

// ParsePhones делит строку по запятым и отбрасывает пустые элементы.
func ParsePhones(line string) []string {
	return shared.SplitList(line, ",")
}
