package notification

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// attachmentName is the filename given to the registration summary document
// on council-facing emails.
const attachmentName = "registration-summary.html"

// Transport delivers notification emails via SMTP using the go-mail library.
// It satisfies the dispatch engine's transport interface.
type Transport struct {
	config  SMTPConfig
	catalog *Catalog
}

// NewTransport creates a Transport with the given SMTP configuration. A nil
// catalog falls back to the built-in message catalog.
func NewTransport(config SMTPConfig, catalog *Catalog) *Transport {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Transport{config: config, catalog: catalog}
}

// Send renders templateID against data and delivers the result to address.
// A non-empty attachment is included as the registration summary document.
func (t *Transport) Send(ctx context.Context, templateID, address string, data map[string]string, attachment []byte) error {
	m, err := t.buildMessage(templateID, address, data, attachment)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(t.config.Host,
		mail.WithPort(t.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.config.Username),
		mail.WithPassword(t.config.Password),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(t.config.Encryption)),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return c.DialAndSendWithContext(ctx, m)
}

// buildMessage assembles the outgoing message without dialing. Split out so
// message construction can be exercised without an SMTP server.
func (t *Transport) buildMessage(templateID, address string, data map[string]string, attachment []byte) (*mail.Msg, error) {
	if address == "" {
		return nil, fmt.Errorf("notification %q has no recipient address", templateID)
	}

	subject, body, err := t.catalog.Render(templateID, data)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(t.config.FromAddr); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(address); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", address, err)
	}

	m.Subject(subject)
	m.SetGenHeader(mail.Header("X-Notification-Reference"), uuid.NewString())

	// Plain-text fallback for clients that don't render HTML.
	m.SetBodyString(mail.TypeTextPlain, body)

	if html, err := buildEmailHTML(subject, body); err == nil {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}

	if len(attachment) > 0 {
		if err := m.AttachReader(attachmentName, bytes.NewReader(attachment)); err != nil {
			return nil, fmt.Errorf("attaching registration summary: %w", err)
		}
	}

	return m, nil
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
