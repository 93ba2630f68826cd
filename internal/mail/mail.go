// Package mail renders and delivers outbound email.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"storefront/web"

	gomail "github.com/go-mail/mail/v2"
	html "github.com/gofiber/template/html/v2"
	"golang.org/x/time/rate"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender delivers through an SMTP relay. Sends are throttled so that a
// burst of registrations cannot exceed the relay's quota.
type SMTPSender struct {
	sender  string
	limiter *rate.Limiter

	// deliver and backoff are swapped in tests.
	deliver func(*gomail.Message) error
	backoff time.Duration
}

const sendAttempts = 3

func NewSMTPSender(host string, port int, username, password, sender string, perMinute int) *SMTPSender {
	if perMinute <= 0 {
		perMinute = 30
	}
	d := gomail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPSender{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5),
		deliver: func(msg *gomail.Message) error { return d.DialAndSend(msg) },
		backoff: 2 * time.Second,
	}
}

func (m *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail throttled: %w", err)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// Retries wait backoff, then twice that.
	var err error
	wait := m.backoff
	for i := 0; i < sendAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("send mail to %s: %w (last error: %v)", to, ctx.Err(), err)
			case <-time.After(wait):
			}
			wait *= 2
		}
		if err = m.deliver(msg); err == nil {
			return nil
		}
	}
	return fmt.Errorf("send mail to %s: %w", to, err)
}

// LogSender writes messages to the log instead of delivering them; used when
// no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	log.Printf("[mail] to=%s subject=%q\n%s", to, subject, htmlBody)
	return nil
}

// Mailer renders templates from web/templates/emails and hands them to a Sender.
type Mailer struct {
	Sender        Sender
	SubjectPrefix string
	engine        *html.Engine
}

func NewMailer(s Sender, subjectPrefix string) (*Mailer, error) {
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}
	return &Mailer{Sender: s, SubjectPrefix: subjectPrefix, engine: engine}, nil
}

func (m *Mailer) render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := m.engine.Render(&buf, "emails/"+name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendActivation mails the account activation link.
func (m *Mailer) SendActivation(ctx context.Context, to, username, link string, validFor time.Duration) error {
	body, err := m.render("activation", map[string]any{
		"Username": username,
		"Link":     link,
		"ValidFor": humanDuration(validFor),
	})
	if err != nil {
		return err
	}
	return m.Sender.Send(ctx, to, m.SubjectPrefix+"Activate Your Account", body)
}

func humanDuration(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return d.String()
}
