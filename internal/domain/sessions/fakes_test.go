package sessions

import (
	"context"

	"telegram-session-manager/internal/adapters/telegram/core"
	"telegram-session-manager/internal/domain/credentials"

	tdsession "github.com/gotd/td/session"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// sessionPayload — минимальная сессия gotd, которую понимает session.Loader.
const sessionPayload = `{"Version":1,"Data":{"DC":2,"Addr":"149.154.167.50:443"}}`

var testAPI = credentials.API{Name: "main", APIID: "12345", APIHash: "0123456789abcdef"}

// fakeConn имитирует auth-API Telegram.
type fakeConn struct {
	authorized  bool
	sent        tg.AuthSentCodeClass
	statusErr   error
	sendErr     error
	signInErr   error
	passwordErr error
	self        *tg.User
	selfErr     error

	codes     []string
	passwords []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		sent: &tg.AuthSentCode{PhoneCodeHash: "hash"},
		self: &tg.User{ID: 42, Username: "tester"},
	}
}

func (c *fakeConn) Status(context.Context) (*auth.Status, error) {
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	return &auth.Status{Authorized: c.authorized}, nil
}

func (c *fakeConn) SendCode(context.Context, string, auth.SendCodeOptions) (tg.AuthSentCodeClass, error) {
	if c.sendErr != nil {
		return nil, c.sendErr
	}
	return c.sent, nil
}

func (c *fakeConn) SignIn(_ context.Context, _, code, codeHash string) (*tg.AuthAuthorization, error) {
	c.codes = append(c.codes, code+"/"+codeHash)
	if c.signInErr != nil {
		return nil, c.signInErr
	}
	return &tg.AuthAuthorization{}, nil
}

func (c *fakeConn) Password(_ context.Context, password string) (*tg.AuthAuthorization, error) {
	c.passwords = append(c.passwords, password)
	if c.passwordErr != nil {
		return nil, c.passwordErr
	}
	return &tg.AuthAuthorization{}, nil
}

func (c *fakeConn) Self(context.Context) (*tg.User, error) {
	if c.selfErr != nil {
		return nil, c.selfErr
	}
	return c.self, nil
}

// fakeDialer сохраняет сессию сразу после «обмена ключами», как это делает gotd,
// и затем отдаёт fakeConn в fn.
type fakeDialer struct {
	conn    *fakeConn
	dialErr error
	calls   int
}

var _ core.Dialer = (*fakeDialer)(nil)

func (d *fakeDialer) Dial(
	ctx context.Context,
	_ credentials.API,
	st tdsession.Storage,
	fn func(ctx context.Context, conn core.Conn) error,
) error {
	d.calls++
	if d.dialErr != nil {
		return d.dialErr
	}
	if err := st.StoreSession(ctx, []byte(sessionPayload)); err != nil {
		return err
	}
	return fn(ctx, d.conn)
}

func staticPrompt(value string) PromptFunc {
	return func(context.Context) (string, error) { return value, nil }
}

func errPrompt(err error) PromptFunc {
	return func(context.Context) (string, error) { return "", err }
}
