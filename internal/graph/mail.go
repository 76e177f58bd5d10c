package graph

import (
	"context"
	"fmt"
	"net/http"
)

// SendMail sends a plain-text mail from the signed-in user.
func (c *Client) SendMail(ctx context.Context, to []string, subject, body string) error {
	recipients := make([]Recipient, len(to))
	for i, addr := range to {
		recipients[i] = Recipient{EmailAddress: EmailAddress{Address: addr}}
	}

	payload := map[string]interface{}{
		"message": Message{
			Subject:      subject,
			Body:         ItemBody{ContentType: "Text", Content: body},
			ToRecipients: recipients,
		},
		"saveToSentItems": true,
	}

	if err := c.do(ctx, http.MethodPost, "/me/sendMail", payload, nil); err != nil {
		return fmt.Errorf("sendMail failed: %w", err)
	}
	return nil
}
