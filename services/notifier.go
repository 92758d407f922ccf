package services

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"mt2-alerts/config"
	"mt2-alerts/models"
	"mt2-alerts/utils"

	"github.com/jordan-wright/email"
)

const (
	alertSubject = "MT2 Alert Notification"
	alertHeader  = "Found items with low price:"
)

// ErrMissingCredentials is returned when sender, password or recipient is
// empty. Nothing is sent in that case.
var ErrMissingCredentials = errors.New("mail sender, password and recipient are required")

// DeliveryError wraps a failed SMTP submission.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver alert email: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type Mailer interface {
	Send(msg *email.Email) error
}

// SMTPMailer submits over implicit TLS, as smtp.gmail.com:465 expects.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (m SMTPMailer) Send(msg *email.Email) error {
	return msg.SendWithTLS(
		fmt.Sprintf("%s:%d", m.Host, m.Port),
		smtp.PlainAuth("", m.Username, m.Password, m.Host),
		&tls.Config{ServerName: m.Host},
	)
}

type Notifier struct {
	From     string
	Password string
	To       string
	Mailer   Mailer
}

func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		From:     cfg.EmailAddress,
		Password: cfg.EmailPassword,
		To:       cfg.EmailTo,
		Mailer: SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailAddress,
			Password: cfg.EmailPassword,
		},
	}
}

// Notify emails the alerts and reports whether a message was sent. With no
// alerts it does nothing.
func (n *Notifier) Notify(alerts []models.AlertRecord) (bool, error) {
	if len(alerts) == 0 {
		utils.Info("No alerts, nothing to send")
		return false, nil
	}
	if n.From == "" || n.Password == "" || n.To == "" {
		return false, ErrMissingCredentials
	}

	htmlBody, err := FormatHTML(alerts)
	if err != nil {
		return false, err
	}

	msg := email.NewEmail()
	msg.From = n.From
	msg.To = []string{n.To}
	msg.Subject = alertSubject
	msg.Text = []byte(FormatText(alerts))
	msg.HTML = []byte(htmlBody)

	if err := n.Mailer.Send(msg); err != nil {
		return false, &DeliveryError{Err: err}
	}

	utils.Success("Sent %d alert(s) to %s", len(alerts), n.To)
	return true, nil
}

func formatLine(a models.AlertRecord) string {
	return fmt.Sprintf("(Item: %s) (%d Yang) — Vendedor: %s", a.DisplayName, a.Price, a.Seller)
}

func FormatText(alerts []models.AlertRecord) string {
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		lines = append(lines, formatLine(a))
	}
	return alertHeader + "\n\n" + strings.Join(lines, "\n")
}

var htmlTemplate = template.Must(template.New("alerts").Parse(
	`<html><body>
<h3>{{ .Header }}</h3>
<ul>
{{- range .Alerts }}
<li><strong>{{ .DisplayName }}</strong> ({{ .Price }} Yang) — Vendedor: {{ .Seller }}</li>
{{- end }}
</ul>
</body></html>
`,
))

func FormatHTML(alerts []models.AlertRecord) (string, error) {
	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		Header string
		Alerts []models.AlertRecord
	}{alertHeader, alerts})
	if err != nil {
		return "", fmt.Errorf("render alert email: %w", err)
	}
	return buf.String(), nil
}
