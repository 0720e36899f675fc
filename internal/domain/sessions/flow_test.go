package sessions

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow(t *testing.T) {
	errBadCode := errors.New("PHONE_CODE_INVALID")
	errBadPassword := errors.New("PASSWORD_HASH_INVALID")
	errCancelled := errors.New("interrupted")

	cases := []struct {
		name      string
		setup     func(c *fakeConn)
		prompts   Prompts
		wantState AuthState
		wantErr   error
		passwords []string
	}{
		{
			name:      "codeOnly",
			prompts:   Prompts{Code: staticPrompt(" 12345 ")},
			wantState: StateAuthorized,
		},
		{
			name:      "twoFactor",
			setup:     func(c *fakeConn) { c.signInErr = auth.ErrPasswordAuthNeeded },
			prompts:   Prompts{Code: staticPrompt("12345"), Password: staticPrompt("secret")},
			wantState: StateAuthorized,
			passwords: []string{"secret"},
		},
		{
			name: "wrongPassword",
			setup: func(c *fakeConn) {
				c.signInErr = auth.ErrPasswordAuthNeeded
				c.passwordErr = errBadPassword
			},
			prompts:   Prompts{Code: staticPrompt("12345"), Password: staticPrompt("nope")},
			wantState: StateFailed,
			wantErr:   errBadPassword,
			passwords: []string{"nope"},
		},
		{
			name:      "wrongCode",
			setup:     func(c *fakeConn) { c.signInErr = errBadCode },
			prompts:   Prompts{Code: staticPrompt("00000")},
			wantState: StateFailed,
			wantErr:   errBadCode,
		},
		{
			name:      "alreadyAuthorized",
			setup:     func(c *fakeConn) { c.authorized = true },
			wantState: StateAuthorized,
		},
		{
			name:      "sentCodeSuccess",
			setup:     func(c *fakeConn) { c.sent = &tg.AuthSentCodeSuccess{} },
			wantState: StateAuthorized,
		},
		{
			name:      "noCodePrompt",
			wantState: StateFailed,
			wantErr:   errNoCodePrompt,
		},
		{
			name:      "emptyCode",
			prompts:   Prompts{Code: staticPrompt("   ")},
			wantState: StateFailed,
			wantErr:   errEmptyCode,
		},
		{
			name:      "codePromptInterrupted",
			prompts:   Prompts{Code: errPrompt(errCancelled)},
			wantState: StateFailed,
			wantErr:   errCancelled,
		},
		{
			name:      "noPasswordPrompt",
			setup:     func(c *fakeConn) { c.signInErr = auth.ErrPasswordAuthNeeded },
			prompts:   Prompts{Code: staticPrompt("12345")},
			wantState: StateFailed,
			wantErr:   errNoPasswordPrompt,
		},
		{
			name:      "signUpRequired",
			setup:     func(c *fakeConn) { c.signInErr = &auth.SignUpRequired{} },
			prompts:   Prompts{Code: staticPrompt("12345")},
			wantState: StateFailed,
			wantErr:   errNotRegistered,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn := newFakeConn()
			if tc.setup != nil {
				tc.setup(conn)
			}
			flow := newLoginFlow(Telethon, "+821012345678", tc.prompts)
			require.Equal(t, StateDisconnected, flow.State())

			err := flow.run(context.Background(), conn)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantState, flow.State())
			assert.True(t, flow.State().Terminal())
			assert.Equal(t, tc.passwords, conn.passwords)
		})
	}
}

func TestLoginFlowTrimsCodeAndPassesHash(t *testing.T) {
	conn := newFakeConn()
	flow := newLoginFlow(Pyrogram, "+821012345678", Prompts{Code: staticPrompt(" 777 ")})

	require.NoError(t, flow.run(context.Background(), conn))
	assert.Equal(t, []string{"777/hash"}, conn.codes)
}

func TestAuthStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "awaiting_code", StateAwaitingCode.String())
	assert.Equal(t, "awaiting_password", StateAwaitingPassword.String())
	assert.Equal(t, "authorized", StateAuthorized.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", AuthState(99).String())

	assert.False(t, StateAwaitingCode.Terminal())
	assert.False(t, StateAwaitingPassword.Terminal())
}
