package utils

import (
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendMail delivers a transactional email through SendGrid.
// Env: SENDGRID_API_KEY, EMAIL_FROM.
func SendMail(to string, subject string, html string) (bool, error) {
	from := mail.NewEmail("Pet Found", os.Getenv("EMAIL_FROM"))
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", html)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	res, err := client.Send(message)
	if err != nil {
		return false, err
	}

	return res.StatusCode >= 200 && res.StatusCode < 300, nil
}
