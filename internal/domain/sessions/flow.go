package sessions

import (
	"context"
	"strings"

	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/infra/logger"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// AuthState — состояние автомата авторизации одной попытки.
type AuthState int

const (
	StateDisconnected AuthState = iota
	StateAwaitingCode
	StateAwaitingPassword
	StateAuthorized
	StateFailed
)

func (s AuthState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAwaitingPassword:
		return "awaiting_password"
	case StateAuthorized:
		return "authorized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal сообщает, завершена ли попытка.
func (s AuthState) Terminal() bool {
	return s == StateAuthorized || s == StateFailed
}

var (
	errNoCodePrompt     = errors.New("code prompt is not configured")
	errNoPasswordPrompt = errors.New("password prompt is not configured")
	errEmptyCode        = errors.New("verification code is empty")
	errNotRegistered    = errors.New("phone number is not registered in Telegram")
)

// loginFlow — автомат входа пользовательского аккаунта:
//
//	Disconnected → AwaitingCode → Authorized
//	                            → AwaitingPassword → Authorized
//	любая ошибка → Failed
//
// Authorized и Failed терминальны: повтор начинается с нового автомата.
type loginFlow struct {
	library Library
	phone   string
	prompts Prompts
	state   AuthState
}

func newLoginFlow(library Library, phone string, prompts Prompts) *loginFlow {
	return &loginFlow{library: library, phone: phone, prompts: prompts, state: StateDisconnected}
}

// State возвращает текущее состояние автомата.
func (f *loginFlow) State() AuthState { return f.state }

func (f *loginFlow) transition(to AuthState) {
	logger.Debug("auth state changed",
		zap.String("library", string(f.library)),
		zap.String("phone", f.phone),
		zap.Stringer("from", f.state),
		zap.Stringer("to", to),
	)
	f.state = to
}

func (f *loginFlow) fail(err error) error {
	f.transition(StateFailed)
	return err
}

// run проводит автомат по соединению conn до терминального состояния.
// Уже авторизованная сессия сразу переходит в Authorized без запроса кода.
func (f *loginFlow) run(ctx context.Context, conn core.Conn) error {
	status, err := conn.Status(ctx)
	if err != nil {
		return f.fail(errors.Wrap(err, "auth status"))
	}
	if status.Authorized {
		f.transition(StateAuthorized)
		return nil
	}

	sent, err := conn.SendCode(ctx, f.phone, auth.SendCodeOptions{})
	if err != nil {
		return f.fail(errors.Wrap(err, "send code"))
	}
	var codeHash string
	switch s := sent.(type) {
	case *tg.AuthSentCode:
		codeHash = s.PhoneCodeHash
	case *tg.AuthSentCodeSuccess:
		// Telegram авторизовал по future auth token — код не нужен.
		f.transition(StateAuthorized)
		return nil
	default:
		return f.fail(errors.Errorf("unexpected sent code type %T", sent))
	}
	f.transition(StateAwaitingCode)

	if f.prompts.Code == nil {
		return f.fail(errNoCodePrompt)
	}
	code, err := f.prompts.Code(ctx)
	if err != nil {
		return f.fail(errors.Wrap(err, "read code"))
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return f.fail(errEmptyCode)
	}

	_, signInErr := conn.SignIn(ctx, f.phone, code, codeHash)
	var signUp *auth.SignUpRequired
	switch {
	case signInErr == nil:
		f.transition(StateAuthorized)
		return nil
	case errors.Is(signInErr, auth.ErrPasswordAuthNeeded):
		f.transition(StateAwaitingPassword)
	case errors.As(signInErr, &signUp):
		return f.fail(errNotRegistered)
	default:
		return f.fail(errors.Wrap(signInErr, "sign in"))
	}

	if f.prompts.Password == nil {
		return f.fail(errNoPasswordPrompt)
	}
	password, err := f.prompts.Password(ctx)
	if err != nil {
		return f.fail(errors.Wrap(err, "read password"))
	}
	if _, err := conn.Password(ctx, password); err != nil {
		return f.fail(errors.Wrap(err, "check password"))
	}
	f.transition(StateAuthorized)
	return nil
}
