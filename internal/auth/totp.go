package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"gadgetsite/internal/models"
)

// qrSize is the edge length in pixels of enrolment QR codes.
const qrSize = 256

// Enrolment is a freshly generated TOTP secret awaiting confirmation.
type Enrolment struct {
	Secret string
	URL    string
	QRCode []byte // PNG
}

// BeginEnrolment generates and stores a new TOTP secret for the user.
// The second factor stays disabled until ConfirmEnrolment succeeds.
func (p *Provider) BeginEnrolment(ctx context.Context, userID uuid.UUID, email string) (*Enrolment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}
	if err := p.users.SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}
	return enrolment(key)
}

// ConfirmEnrolment enables the second factor once the user proves they
// hold the secret.
func (p *Provider) ConfirmEnrolment(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("confirm totp: %w", err)
	}
	if user == nil {
		return ErrNoSession
	}
	if err := validateCode(user, code); err != nil {
		return err
	}
	if user.TOTPEnabled {
		return nil
	}
	if err := p.users.EnableTOTP(ctx, userID); err != nil {
		return fmt.Errorf("confirm totp: %w", err)
	}
	return nil
}

// CurrentEnrolment returns nil when the user's second factor is already
// enabled. Otherwise it returns the stored unconfirmed secret, or starts a
// new enrolment when there is none.
func (p *Provider) CurrentEnrolment(ctx context.Context, userID uuid.UUID, email string) (*Enrolment, error) {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load enrolment: %w", err)
	}
	if user == nil {
		return nil, ErrNoSession
	}
	if user.TOTPEnabled {
		return nil, nil
	}
	if user.TOTPSecret == nil {
		return p.BeginEnrolment(ctx, userID, email)
	}

	raw := fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.PathEscape(p.issuer), url.PathEscape(email), *user.TOTPSecret, url.QueryEscape(p.issuer))
	key, err := otp.NewKeyFromURL(raw)
	if err != nil {
		return nil, fmt.Errorf("load enrolment: %w", err)
	}
	return enrolment(key)
}

func enrolment(key *otp.Key) (*Enrolment, error) {
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return &Enrolment{Secret: key.Secret(), URL: key.URL(), QRCode: png}, nil
}

func validateCode(user *models.User, code string) error {
	if user.TOTPSecret == nil {
		return ErrNotEnrolled
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		return ErrInvalidCode
	}
	return nil
}
