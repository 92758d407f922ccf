package services

import (
	"errors"
	"testing"

	"mt2-alerts/config"
	"mt2-alerts/models"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []*email.Email
	err  error
}

func (m *fakeMailer) Send(msg *email.Email) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func testNotifier(m Mailer) *Notifier {
	return &Notifier{From: "bot@example.com", Password: "secret", To: "me@example.com", Mailer: m}
}

var sampleAlerts = []models.AlertRecord{
	{DisplayName: "Espada — Daño medio +12%", Price: 500, Seller: "Kratos"},
	{DisplayName: "Anillo", Price: 1000, Seller: models.UnknownSeller},
}

func TestFormatText(t *testing.T) {
	want := "Found items with low price:\n\n" +
		"(Item: Espada — Daño medio +12%) (500 Yang) — Vendedor: Kratos\n" +
		"(Item: Anillo) (1000 Yang) — Vendedor: (unknown)"
	require.Equal(t, want, FormatText(sampleAlerts))
}

func TestFormatHTMLEscapes(t *testing.T) {
	body, err := FormatHTML([]models.AlertRecord{{DisplayName: "<b>Arco</b>", Price: 10, Seller: "A&B"}})
	require.NoError(t, err)
	require.Contains(t, body, "<h3>Found items with low price:</h3>")
	require.Contains(t, body, "<strong>&lt;b&gt;Arco&lt;/b&gt;</strong> (10 Yang)")
	require.Contains(t, body, "Vendedor: A&amp;B")
}

func TestNotifySendsMultipartMessage(t *testing.T) {
	mailer := &fakeMailer{}

	sent, err := testNotifier(mailer).Notify(sampleAlerts)
	require.NoError(t, err)
	require.True(t, sent)
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	require.Equal(t, "MT2 Alert Notification", msg.Subject)
	require.Equal(t, "bot@example.com", msg.From)
	require.Equal(t, []string{"me@example.com"}, msg.To)
	require.Equal(t, FormatText(sampleAlerts), string(msg.Text))
	require.Contains(t, string(msg.HTML), "<li>")
}

func TestNotifyWithoutAlertsSendsNothing(t *testing.T) {
	mailer := &fakeMailer{}

	sent, err := testNotifier(mailer).Notify(nil)
	require.NoError(t, err)
	require.False(t, sent)
	require.Empty(t, mailer.sent)
}

func TestNotifyMissingCredentials(t *testing.T) {
	mailer := &fakeMailer{}
	n := testNotifier(mailer)
	n.Password = ""

	sent, err := n.Notify(sampleAlerts)
	require.ErrorIs(t, err, ErrMissingCredentials)
	require.False(t, sent)
	require.Empty(t, mailer.sent)
}

func TestNotifyDeliveryFailure(t *testing.T) {
	cause := errors.New("535 authentication failed")
	mailer := &fakeMailer{err: cause}

	sent, err := testNotifier(mailer).Notify(sampleAlerts)
	require.False(t, sent)

	var delivery *DeliveryError
	require.True(t, errors.As(err, &delivery))
	require.ErrorIs(t, err, cause)
}

func TestNewNotifierUsesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EmailAddress = "bot@example.com"
	cfg.EmailPassword = "secret"
	cfg.EmailTo = "me@example.com"

	n := NewNotifier(cfg)
	mailer, ok := n.Mailer.(SMTPMailer)
	require.True(t, ok)
	require.Equal(t, "smtp.gmail.com", mailer.Host)
	require.Equal(t, 465, mailer.Port)
	require.Equal(t, "bot@example.com", mailer.Username)
	require.Equal(t, "me@example.com", n.To)
}
