package utils

import (
	"fmt"
	"log"
	"os"

	"ecommerce-backend/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional emails through SendGrid. When no API key
// is configured the service is a no-op, so checkout never depends on it.
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService initializes the email service from the environment.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("SENDGRID_API_KEY not set; email notifications disabled")
		return &EmailService{}
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es == nil || es.client == nil {
		return nil
	}

	from := mail.NewEmail("E-commerce Platform", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	response, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded with status %d", response.StatusCode)
	}
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation to the user.
func (es *EmailService) SendOrderConfirmationEmail(toEmail, name string, order models.Order) error {
	subject := "Order Confirmation - E-commerce Platform"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br>Shipping Address: <strong>%s</strong><br><br>Thank you for shopping with us!",
		name,
		order.ID.Hex(),
		order.TotalAmount,
		order.ShippingAddress,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
