package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"sort"
	"strings"

	"AgriDealer/Slack"
)

type Config struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	TLSEnabled bool
}

// Message is a plain text email
type Message struct {
	To      []string
	CC      []string
	Subject string
	Body    string
}

// Recipients returns every address the message is delivered to
func (m Message) Recipients() []string {
	return append(append([]string{}, m.To...), m.CC...)
}

// Build renders headers and body with CRLF line endings
func Build(config Config, message Message) []byte {
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", config.FromName, config.FromEmail),
		"To":           strings.Join(message.To, ", "),
		"Subject":      message.Subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	if len(message.CC) > 0 {
		headers["Cc"] = strings.Join(message.CC, ", ")
	}
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(fmt.Sprintf("%s: %s\r\n", key, headers[key]))
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(message.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// Send delivers the message over SMTP, with implicit TLS when enabled
func Send(config Config, message Message) error {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.SMTPServer)
	serverAddr := fmt.Sprintf("%s:%d", config.SMTPServer, config.SMTPPort)
	body := Build(config, message)
	recipients := message.Recipients()

	if !config.TLSEnabled {
		return smtp.SendMail(serverAddr, auth, config.FromEmail, recipients, body)
	}

	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: config.SMTPServer})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.SMTPServer)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range recipients {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data connection: %w", err)
	}
	if _, err = w.Write(body); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data connection: %w", err)
	}
	return client.Quit()
}

// DigestMailer emails each dealer their own digest. It is used when no Slack channel is configured.
type DigestMailer struct {
	Config Config
	send   func(Config, Message) error
}

func NewDigestMailer(config Config) *DigestMailer {
	return &DigestMailer{Config: config, send: Send}
}

// Post emails the report to the dealer's address. The returned id is the recipient.
func (m *DigestMailer) Post(ctx context.Context, r Slack.DigestReport) (string, error) {
	if r.DealerEmail == "" {
		return "", errors.New("dealer has no email address")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	message := Message{
		To:      []string{r.DealerEmail},
		Subject: fmt.Sprintf("Weekly digest for %s, %s", r.DealerName, r.Date.Format("02 Jan 2006")),
		Body:    strings.NewReplacer("*", "", "_", "").Replace(Slack.FormatDigest(r)),
	}
	if err := m.send(m.Config, message); err != nil {
		return "", fmt.Errorf("emailing digest to %s: %w", r.DealerEmail, err)
	}
	return r.DealerEmail, nil
}
