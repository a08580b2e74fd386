package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"hotelier/internal/app/policies"
)

// Mailer sends guest-facing notifications over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(host string, port int, user, password, from string) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(port)}
	if user != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(user), mail.WithPassword(password))
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return &Mailer{client: client, from: from}, nil
}

func (m *Mailer) SendCancellation(ctx context.Context, email string, notice policies.CancellationNotice) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Reservation %s cancelled", notice.ReservationID))
	body := fmt.Sprintf(
		"Dear %s,\n\nYour reservation %s for room %s (%s to %s) was cancelled on %s.\n\nWe hope to welcome you another time.\n",
		notice.GuestName,
		notice.ReservationID,
		notice.RoomNumber,
		notice.CheckIn.Format("2006-01-02"),
		notice.CheckOut.Format("2006-01-02"),
		notice.CancelledAt.Format("2006-01-02"),
	)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return m.client.DialAndSendWithContext(ctx, msg)
}

var _ policies.Notifier = (*Mailer)(nil)
