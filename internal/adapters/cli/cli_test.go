package cli

import (
	"context"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	lines     []string
	errs      []error
	prompts   []string
	passwords int
}

func (r *scriptedReader) SetPrompt(prompt string) { r.prompts = append(r.prompts, prompt) }

func (r *scriptedReader) next() (string, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) Readline() (string, error) { return r.next() }

func (r *scriptedReader) ReadPassword(prompt string) ([]byte, error) {
	r.passwords++
	r.prompts = append(r.prompts, prompt)
	line, err := r.next()
	return []byte(line), err
}

func TestReadLineTrims(t *testing.T) {
	rl := &scriptedReader{lines: []string{"  1, 2 \n"}}
	p := NewPrompter(rl, nil)

	got, err := p.ReadLine(context.Background(), "Select: ")
	require.NoError(t, err)
	assert.Equal(t, "1, 2", got)
	assert.Equal(t, []string{"Select: "}, rl.prompts)
}

func TestReadSecret(t *testing.T) {
	t.Run("tty", func(t *testing.T) {
		rl := &scriptedReader{lines: []string{" pass word "}}
		p := NewPrompter(rl, nil)
		p.secretTTY = true

		got, err := p.ReadSecret(context.Background(), "2FA password: ")
		require.NoError(t, err)
		assert.Equal(t, " pass word ", got)
		assert.Equal(t, 1, rl.passwords)
	})

	t.Run("pipe", func(t *testing.T) {
		rl := &scriptedReader{lines: []string{"secret\n"}}
		p := NewPrompter(rl, nil)
		p.secretTTY = false

		got, err := p.ReadSecret(context.Background(), "2FA password: ")
		require.NoError(t, err)
		assert.Equal(t, "secret", got)
		assert.Zero(t, rl.passwords)
	})
}

func TestInterruptCancelsContext(t *testing.T) {
	for name, readErr := range map[string]error{
		"ctrlC": readline.ErrInterrupt,
		"ctrlD": io.EOF,
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			p := NewPrompter(&scriptedReader{errs: []error{readErr}}, cancel)
			_, err := p.ReadLine(ctx, "> ")
			require.ErrorIs(t, err, ErrInterrupted)
			assert.ErrorIs(t, ctx.Err(), context.Canceled)

			// После отмены приглашения больше не читаются.
			_, err = p.ReadLine(ctx, "> ")
			assert.ErrorIs(t, err, ErrInterrupted)
			_, err = p.ReadSecret(ctx, "> ")
			assert.ErrorIs(t, err, ErrInterrupted)
		})
	}
}

func TestReadErrorIsWrapped(t *testing.T) {
	boom := errors.New("tty gone")
	p := NewPrompter(&scriptedReader{errs: []error{boom}}, nil)

	_, err := p.ReadLine(context.Background(), "> ")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInterrupted)
}
