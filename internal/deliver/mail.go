// Package deliver sends a rendered report somewhere a reader can see it,
// either as a multipart email or as a pair of files on disk. Delivery
// problems are returned to the caller; by the time a report is rendered,
// failing to hand it off is not worth losing the run over.
package deliver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// DefaultSMTPPort is the implicit-TLS submission port used when
// credentials are configured and no explicit port is given.
const DefaultSMTPPort = 465

const sendTimeout = 5 * time.Minute

// MailOptions describes the message envelope and the SMTP endpoint.
type MailOptions struct {
	Server   string
	Port     int
	From     string
	To       []string
	Cc       []string
	Username string
	Password string
	Logger   *slog.Logger
}

// SendMail delivers the report as a multipart/alternative message with the
// plaintext part first and the HTML part as the preferred alternative.
// When credentials are set the connection uses SSL on port 465 with plain
// auth; without credentials it speaks cleartext SMTP to the given server.
func SendMail(ctx context.Context, subject, htmlBody, textBody string, opts MailOptions) error {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	msg := mail.NewMsg()
	if err := msg.From(opts.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(opts.To...); err != nil {
		return fmt.Errorf("set to addresses: %w", err)
	}
	if len(opts.Cc) > 0 {
		if err := msg.Cc(opts.Cc...); err != nil {
			return fmt.Errorf("set cc addresses: %w", err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	clientOpts := []mail.Option{
		mail.WithTimeout(sendTimeout),
	}
	if opts.Username != "" && opts.Password != "" {
		port := opts.Port
		if port == 0 {
			port = DefaultSMTPPort
		}
		clientOpts = append(clientOpts,
			mail.WithPort(port),
			mail.WithSSL(),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	} else {
		clientOpts = append(clientOpts, mail.WithTLSPolicy(mail.NoTLS))
		if opts.Port != 0 {
			clientOpts = append(clientOpts, mail.WithPort(opts.Port))
		}
	}

	client, err := mail.NewClient(opts.Server, clientOpts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	log.Info("sending report email", "server", opts.Server, "to", opts.To)
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", opts.Server, err)
	}
	return nil
}
