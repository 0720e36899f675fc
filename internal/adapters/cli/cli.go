// Package cli — терминальный ввод мастера создания сессий. Prompter читает строки через
// общий readline (см. pr.Init), 2FA‑пароль — без эха. Ctrl-C или Ctrl-D на любом
// приглашении считаются прерыванием: корневой контекст отменяется, а вызывающий
// получает ErrInterrupted и сворачивает работу с частичной сводкой.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"telegram-session-manager/internal/infra/logger"

	"github.com/chzyer/readline"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrInterrupted — оператор прервал ввод (Ctrl-C/Ctrl-D) или пришёл сигнал завершения.
var ErrInterrupted = errors.New("interrupted by user")

// LineReader — часть *readline.Instance, которой пользуется Prompter.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
	ReadPassword(prompt string) ([]byte, error)
}

var _ LineReader = (*readline.Instance)(nil)

// Prompter реализует интерактивный ввод поверх LineReader.
type Prompter struct {
	rl     LineReader
	cancel context.CancelFunc
	// secretTTY — вводить ли секреты без эха; на неинтерактивном stdin пароль читается обычной строкой.
	secretTTY bool
	once      sync.Once
}

// NewPrompter создаёт Prompter. cancel отменяет корневой контекст при прерывании (может быть nil).
func NewPrompter(rl LineReader, cancel context.CancelFunc) *Prompter {
	return &Prompter{
		rl:        rl,
		cancel:    cancel,
		secretTTY: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// ReadLine печатает приглашение и возвращает строку без пробелов по краям.
func (p *Prompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(ErrInterrupted, err.Error())
	}
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if err != nil {
		return "", p.readErr(err)
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret читает секрет без эха. Пробелы по краям сохраняются: они могут быть частью пароля.
func (p *Prompter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(ErrInterrupted, err.Error())
	}
	if !p.secretTTY {
		p.rl.SetPrompt(prompt)
		line, err := p.rl.Readline()
		if err != nil {
			return "", p.readErr(err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	secret, err := p.rl.ReadPassword(prompt)
	if err != nil {
		return "", p.readErr(err)
	}
	return string(secret), nil
}

// readErr переводит ошибки readline в ErrInterrupted и отменяет корневой контекст.
func (p *Prompter) readErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		p.once.Do(func() {
			logger.Info("input interrupted by user", zap.Error(err))
			if p.cancel != nil {
				p.cancel()
			}
		})
		return ErrInterrupted
	}
	return errors.Wrap(err, "read input")
}
