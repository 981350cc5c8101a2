package notify

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/portalevent/portal-api/internal/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	addr     string
	auth     smtp.Auth
	from     string
	sendMail sendMailFunc
}

func NewMailer(conf *config.SMTPConfig) *Mailer {
	var auth smtp.Auth
	if conf.Username != "" {
		auth = smtp.PlainAuth("", conf.Username, conf.Password, conf.Host)
	}

	return &Mailer{
		addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		auth:     auth,
		from:     conf.From,
		sendMail: smtp.SendMail,
	}
}

func (m *Mailer) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.sendMail(m.addr, m.auth, m.from, recipients, m.compose(subject, body, recipients)); err != nil {
		return fmt.Errorf("smtp.SendMail -> %w", err)
	}

	zap.L().Info("email sent", zap.String("subject", subject), zap.Int("recipients", len(recipients)))

	return nil
}

// compose builds the message. With several recipients the To header only
// shows the sender so addresses are not disclosed to each other. The subject
// is Q-encoded whenever it holds anything besides printable ASCII.
func (m *Mailer) compose(subject, body string, recipients []string) []byte {
	to := m.from
	if len(recipients) == 1 {
		to = recipients[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return []byte(b.String())
}
