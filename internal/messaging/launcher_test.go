package messaging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://wa.me/628?text=a%20b", NewClient("").URL("628", "a%20b"))
	require.Equal(t, "https://chat.example.com/628?text=x", NewClient("https://chat.example.com/").URL(" 628 ", "x"))
}

func TestLauncherUsesContextOpener(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	ctx := WithOpener(context.Background(), rec)
	l := NewLauncher(NewClient("wa.me"))

	require.NoError(t, l.Launch(ctx, "6282119904581", "Halo%21"))
	require.NoError(t, l.Launch(ctx, "6282119904581", "Lagi"))
	require.Equal(t, []string{
		"https://wa.me/6282119904581?text=Halo%21",
		"https://wa.me/6282119904581?text=Lagi",
	}, rec.Links())
	require.Equal(t, "https://wa.me/6282119904581?text=Lagi", rec.Last())
}

func TestLauncherRequiresDestination(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	err := NewLauncher(NewClient("")).Launch(WithOpener(context.Background(), rec), " ", "x")
	require.ErrorIs(t, err, ErrNoDestination)
	require.Empty(t, rec.Links())
	require.Equal(t, "", rec.Last())
}

func TestLauncherWithoutOpenerLogs(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewLauncher(NewClient("")).Launch(context.Background(), "628", "x"))
}

func TestLauncherWrapsOpenerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("blocked")
	ctx := WithOpener(context.Background(), OpenerFunc(func(context.Context, string) error { return boom }))
	err := NewLauncher(NewClient("")).Launch(ctx, "628", "x")
	require.ErrorIs(t, err, boom)
}

func TestWriterOpener(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := WithOpener(context.Background(), WriterOpener{W: &buf})
	require.NoError(t, NewLauncher(NewClient("")).Launch(ctx, "628", "x"))
	require.Equal(t, "https://wa.me/628?text=x\n", buf.String())
}
