// Package contact builds the outbound WhatsApp and e-mail links used by
// the public request form. Nothing is sent from the server; the visitor's
// browser is redirected to the prefilled link.
package contact

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	qrcode "github.com/skip2/go-qrcode"
)

// Field length caps, matching the form's maxlength attributes.
const (
	MaxName        = 100
	MaxPhone       = 20
	MaxEmail       = 255
	MaxService     = 100
	MaxDescription = 1000
)

// DefaultServices is offered in the form when no active service exists.
var DefaultServices = []string{
	"Impression Laser",
	"Personnalisation d'Objets",
	"Impression de Bâches",
	"Roll-Up",
	"Sérigraphie",
}

// Request is a visitor's service request.
type Request struct {
	Name        string
	Phone       string
	Email       string
	Service     string
	Description string
}

// Trimmed returns r with surrounding whitespace removed from every field.
func (r Request) Trimmed() Request {
	return Request{
		Name:        strings.TrimSpace(r.Name),
		Phone:       strings.TrimSpace(r.Phone),
		Email:       strings.TrimSpace(r.Email),
		Service:     strings.TrimSpace(r.Service),
		Description: strings.TrimSpace(r.Description),
	}
}

// FieldError lists the form fields that are missing or too long.
type FieldError struct {
	Missing []string
	TooLong []string
}

func (e *FieldError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.TooLong) > 0 {
		parts = append(parts, "too long "+strings.Join(e.TooLong, ", "))
	}
	return "contact request: " + strings.Join(parts, "; ")
}

// Channels builds contact links for one business.
type Channels struct {
	siteName string
	whatsApp string
	email    string
}

// New creates Channels. whatsApp is an international number without the
// leading plus sign.
func New(siteName, whatsApp, email string) *Channels {
	return &Channels{
		siteName: siteName,
		whatsApp: strings.TrimPrefix(strings.TrimSpace(whatsApp), "+"),
		email:    email,
	}
}

// Email returns the business contact address.
func (c *Channels) Email() string { return c.email }

// Message renders the prefilled text shared by both channels.
func (c *Channels) Message(r Request) string {
	return fmt.Sprintf("Bonjour %s! Je suis %s.\n\nService: %s\nDescription: %s\nTéléphone: %s\nEmail: %s",
		c.siteName, r.Name, r.Service, r.Description, r.Phone, r.Email)
}

// WhatsAppURL returns a wa.me link carrying the message. Name, phone and
// service are required.
func (c *Channels) WhatsAppURL(r Request) (string, error) {
	r = r.Trimmed()
	if err := check(r, "name", "phone", "service"); err != nil {
		return "", err
	}
	return c.ChatURL() + "?text=" + encodeComponent(c.Message(r)), nil
}

// MailtoURL returns a mailto link to the business address. Name, email
// and service are required.
func (c *Channels) MailtoURL(r Request) (string, error) {
	r = r.Trimmed()
	if err := check(r, "name", "email", "service"); err != nil {
		return "", err
	}
	subject := "Demande de service: " + r.Service
	return "mailto:" + c.email +
		"?subject=" + encodeComponent(subject) +
		"&body=" + encodeComponent(c.Message(r)), nil
}

// ChatURL returns the bare wa.me link without a message.
func (c *Channels) ChatURL() string {
	return "https://wa.me/" + c.whatsApp
}

// QRCode returns a PNG QR code that opens the bare chat link.
func (c *Channels) QRCode(size int) ([]byte, error) {
	png, err := qrcode.Encode(c.ChatURL(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("contact qr: %w", err)
	}
	return png, nil
}

func check(r Request, required ...string) error {
	values := map[string]string{
		"name":        r.Name,
		"phone":       r.Phone,
		"email":       r.Email,
		"service":     r.Service,
		"description": r.Description,
	}
	limits := []struct {
		field string
		max   int
	}{
		{"name", MaxName},
		{"phone", MaxPhone},
		{"email", MaxEmail},
		{"service", MaxService},
		{"description", MaxDescription},
	}

	fe := &FieldError{}
	for _, f := range required {
		if values[f] == "" {
			fe.Missing = append(fe.Missing, f)
		}
	}
	for _, l := range limits {
		if utf8.RuneCountInString(values[l.field]) > l.max {
			fe.TooLong = append(fe.TooLong, l.field)
		}
	}
	if len(fe.Missing) > 0 || len(fe.TooLong) > 0 {
		return fe
	}
	return nil
}

// encodeComponent percent-encodes s for a URL query value, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
