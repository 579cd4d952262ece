package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends account mail. Abstracted so tests can stub it out.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, newPassword string) error
	SendPetitionReset(ctx context.Context, toEmail, toName string) error
}

// SendgridMailer implements Mailer on the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendgridMailer(apiKey, fromAddress string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("AlertaYa", fromAddress),
	}
}

func (m *SendgridMailer) SendPasswordReset(ctx context.Context, toEmail, toName, newPassword string) error {
	subject := "Your AlertaYa password was reset"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour password was reset. Your temporary password is:\n\n    %s\n\nPlease change it after logging in.",
		toName, newPassword)
	return m.send(toEmail, toName, subject, body)
}

func (m *SendgridMailer) SendPetitionReset(ctx context.Context, toEmail, toName string) error {
	subject := "AlertaYa password reset request received"
	body := fmt.Sprintf(
		"Hello %s,\n\nWe received your reset request. Our team will contact you shortly to verify your identity.",
		toName)
	return m.send(toEmail, toName, subject, body)
}

func (m *SendgridMailer) send(toEmail, toName, subject, body string) error {
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(m.from, subject, to, body, body)

	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	log.Printf("[Mailer] Sent %q to %s", subject, toEmail)
	return nil
}

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generatePassword produces a 12-character temporary password. The password
// is mailed to the account owner, so it comes from crypto/rand.
func generatePassword() (string, error) {
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, 12)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b), nil
}
