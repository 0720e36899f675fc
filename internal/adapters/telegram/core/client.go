// Package core содержит оболочки вокруг gotd для авторизации пользовательских сессий.
// Этот файл описывает Dialer: создание MTProto‑клиента поверх заданного хранилища сессии,
// middleware (FLOOD_WAIT и ограничение частоты RPC) и узкий интерфейс Conn, через который
// доменный слой проводит вход, не завися от *telegram.Client напрямую.

package core

import (
	"context"
	"strconv"
	"strings"

	"telegram-session-manager/internal/domain/credentials"

	"github.com/go-faster/errors"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	tdsession "github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Conn — подмножество API клиента, нужное для интерактивного входа.
// Методы повторяют сигнатуры auth.Client и telegram.Client.
type Conn interface {
	Status(ctx context.Context) (*auth.Status, error)
	SendCode(ctx context.Context, phone string, options auth.SendCodeOptions) (tg.AuthSentCodeClass, error)
	SignIn(ctx context.Context, phone, code, codeHash string) (*tg.AuthAuthorization, error)
	Password(ctx context.Context, password string) (*tg.AuthAuthorization, error)
	Self(ctx context.Context) (*tg.User, error)
}

// Dialer открывает соединение с Telegram поверх хранилища st и вызывает fn,
// пока соединение живо. После возврата fn соединение закрывается.
type Dialer interface {
	Dial(ctx context.Context, api credentials.API, st tdsession.Storage, fn func(ctx context.Context, conn Conn) error) error
}

// GotdDialer — боевая реализация Dialer на gotd/td.
type GotdDialer struct {
	ThrottleRPS int                   // целевая частота RPC; burst = 2*rate
	TestDC      bool                  // использовать тестовые DC Telegram
	Device      telegram.DeviceConfig // «паспорт» устройства, видимый в активных сессиях
	Logger      *zap.Logger           // логгер MTProto; nil — без логов gotd
}

var _ Dialer = GotdDialer{}

// Dial создаёт клиента, оборачивает его FLOOD_WAIT‑ожидателем и запускает fn внутри client.Run.
// Апдейты не нужны: клиент живёт ровно столько, сколько длится вход.
func (d GotdDialer) Dial(
	ctx context.Context,
	api credentials.API,
	st tdsession.Storage,
	fn func(ctx context.Context, conn Conn) error,
) error {
	apiID, err := strconv.Atoi(strings.TrimSpace(api.APIID))
	if err != nil {
		return errors.Wrapf(err, "api_id %q is not a number", api.APIID)
	}
	if strings.TrimSpace(api.APIHash) == "" {
		return errors.New("api_hash is empty")
	}

	rps := d.ThrottleRPS
	if rps <= 0 {
		rps = 1
	}
	waiter := floodwait.NewWaiter()

	options := telegram.Options{
		SessionStorage: st,
		NoUpdates:      true,
		Device:         d.Device,
		Middlewares: []telegram.Middleware{
			waiter,
			ratelimit.New(rate.Limit(rps), rps*2), //nolint:mnd // burst = 2*rate
		},
	}
	if d.Logger != nil {
		options.Logger = d.Logger
	}
	if d.TestDC {
		options.DCList = dcs.Test()
	}

	client := telegram.NewClient(apiID, api.APIHash, options)

	return waiter.Run(ctx, func(ctx context.Context) error {
		return client.Run(ctx, func(ctx context.Context) error {
			return fn(ctx, gotdConn{client: client})
		})
	})
}

// gotdConn адаптирует *telegram.Client к Conn.
type gotdConn struct {
	client *telegram.Client
}

func (c gotdConn) Status(ctx context.Context) (*auth.Status, error) {
	return c.client.Auth().Status(ctx)
}

func (c gotdConn) SendCode(ctx context.Context, phone string, options auth.SendCodeOptions) (tg.AuthSentCodeClass, error) {
	return c.client.Auth().SendCode(ctx, phone, options)
}

func (c gotdConn) SignIn(ctx context.Context, phone, code, codeHash string) (*tg.AuthAuthorization, error) {
	return c.client.Auth().SignIn(ctx, phone, code, codeHash)
}

func (c gotdConn) Password(ctx context.Context, password string) (*tg.AuthAuthorization, error) {
	return c.client.Auth().Password(ctx, password)
}

func (c gotdConn) Self(ctx context.Context) (*tg.User, error) {
	return c.client.Self(ctx)
}
