package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// EmailNotifier sends campaign email through the Resend API.
type EmailNotifier struct {
	client *resend.Client
	from   string
}

func NewEmailNotifier(apiKey, from string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (n *EmailNotifier) Send(ctx context.Context, title, message, destination string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{destination},
		Subject: title,
		Text:    message,
	}

	_, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send to %s failed: %w", destination, err)
	}
	return nil
}
