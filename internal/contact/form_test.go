package contact

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haikalarif/portofolio-freelance/internal/order"
	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
)

func validForm() Form {
	return Form{
		Name:    "Budi",
		Email:   "budi@example.com",
		Phone:   "0812",
		Service: "Landing Page",
		Message: "Butuh website & toko online",
	}
}

func TestValidateReportsMissingFields(t *testing.T) {
	t.Parallel()

	err := Form{Phone: "0812", Email: "  "}.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, []string{FieldName, FieldEmail, FieldService, FieldMessage}, verr.Missing)
	require.True(t, verr.Has(FieldService))
	require.False(t, verr.Has(FieldPhone))
	require.Equal(t, "contact: missing name, email, service, message", err.Error())
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	f := validForm()
	f.Email = "budi at example"
	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	require.Empty(t, verr.Missing)
	require.Equal(t, []string{FieldEmail}, verr.Invalid)

	f.Email = "Budi <budi@example.com>"
	require.Error(t, f.Validate())

	require.NoError(t, validForm().Validate())
}

func TestNormalizeStripsMarkup(t *testing.T) {
	t.Parallel()

	f := Form{
		Name:    "  <b>Budi</b> ",
		Message: "Halo <script>alert(1)</script>\nTom & Jerry",
	}.Normalize()
	require.Equal(t, "Budi", f.Name)
	require.Equal(t, "Halo \nTom & Jerry", f.Message)
}

func TestFormFromValues(t *testing.T) {
	t.Parallel()

	v := url.Values{}
	v.Set("name", "Budi")
	v.Set("service", "SEO")
	f := FormFromValues(v)
	require.Equal(t, "Budi", f.Value(FieldName))
	require.Equal(t, "SEO", f.Value(FieldService))
	require.Equal(t, "", f.Value("unknown"))
}

func TestComposeMessage(t *testing.T) {
	t.Parallel()

	want := "🔔 *Pesan Baru dari Website Portfolio*\n\n" +
		"👤 *Nama:* Budi\n" +
		"📧 *Email:* budi@example.com\n" +
		"📱 *Telepon:* 0812\n" +
		"🛠️ *Layanan:* Landing Page\n\n" +
		"💬 *Pesan:*\nButuh website & toko online"
	require.Equal(t, want, ComposeMessage(validForm()))
}

type captured struct {
	dest, enc string
	calls     int
}

func (c *captured) Launch(_ context.Context, dest, enc string) error {
	c.dest, c.enc = dest, enc
	c.calls++
	return nil
}

func TestSubmitHandler(t *testing.T) {
	t.Parallel()

	l := &captured{}
	table := order.NewCommandTable(order.NewDispatcher(l, "1"))
	table.Register(order.KindSubmitContact, SubmitHandler(l, "62821199045813"))

	_, err := table.Handle(context.Background(), nil, Submit{Form: Form{Name: "x"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Zero(t, l.calls)

	out, err := table.Handle(context.Background(), nil, Submit{Form: validForm()})
	require.NoError(t, err)
	sent, ok := out.Payload.(Sent)
	require.True(t, ok)
	require.Equal(t, 1, l.calls)
	require.Equal(t, "62821199045813", l.dest)
	require.Equal(t, order.EncodeComponent(ComposeMessage(validForm())), l.enc)
	require.Equal(t, l.enc, sent.Encoded)
}

func TestChatHandler(t *testing.T) {
	t.Parallel()

	l := &captured{}
	h := ChatHandler(l, "6281234567890")

	out, err := h(context.Background(), nil, OpenChat{})
	require.NoError(t, err)
	require.Equal(t, DefaultGreeting, out.Payload.(Sent).Message)
	require.Equal(t, "Halo%2C%20saya%20tertarik%20dengan%20layanan%20pembuatan%20website%20Anda.", l.enc)

	_, err = h(context.Background(), nil, Submit{})
	require.ErrorIs(t, err, order.ErrUnhandledIntent)
}

func TestLaunchFailureIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	ctx := observability.WithLogger(context.Background(), zap.New(core))
	failing := order.LauncherFunc(func(context.Context, string, string) error { return errors.New("popup blocked") })

	out, err := ChatHandler(failing, "1")(ctx, nil, OpenChat{Greeting: "hai"})
	require.NoError(t, err)
	require.Equal(t, "hai", out.Payload.(Sent).Message)
	require.Equal(t, 1, logs.FilterMessage("contact launch failed").Len())
}
