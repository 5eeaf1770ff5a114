// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/ecommerce-backend/internal/config"
	"github.com/javajoker/ecommerce-backend/internal/models"
)

// Notifier delivers transactional email. Callers never wait on it: every
// send from a request path goes through notifyAsync.
type Notifier interface {
	SendWelcomeEmail(user *models.User) error
	SendPasswordResetEmail(user *models.User, resetToken string) error
	SendOrderConfirmation(user *models.User, order *models.Order) error
	SendOrderStatusUpdate(user *models.User, order *models.Order) error
}

type NotificationService struct {
	config    *config.Config
	templates map[string]*template.Template
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	templates := make(map[string]*template.Template, len(emailTemplates))
	for name, tmpl := range emailTemplates {
		templates[name] = template.Must(template.New(name).Parse(tmpl.Body))
	}

	return &NotificationService{
		config:    config,
		templates: templates,
	}
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	data := map[string]interface{}{
		"Name":      user.Name,
		"StoreName": s.config.Store.Name,
		"ShopURL":   s.config.Frontend.BaseURL,
	}
	return s.send(user.Email, "welcome", data)
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	data := map[string]interface{}{
		"Name":      user.Name,
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.BaseURL, resetToken),
		"ExpiresIn": "1 hour",
		"StoreName": s.config.Store.Name,
	}
	return s.send(user.Email, "password_reset", data)
}

func (s *NotificationService) SendOrderConfirmation(user *models.User, order *models.Order) error {
	data := map[string]interface{}{
		"Name":        user.Name,
		"OrderNumber": order.OrderNumber,
		"Items":       order.Items,
		"FinalAmount": fmt.Sprintf("%.2f %s", order.FinalAmount, s.config.Store.Currency),
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
		"StoreName":   s.config.Store.Name,
	}
	return s.send(user.Email, "order_confirmation", data)
}

func (s *NotificationService) SendOrderStatusUpdate(user *models.User, order *models.Order) error {
	data := map[string]interface{}{
		"Name":        user.Name,
		"OrderNumber": order.OrderNumber,
		"Status":      order.Status,
		"Reason":      order.CancellationReason,
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
		"StoreName":   s.config.Store.Name,
	}
	return s.send(user.Email, "order_status", data)
}

func (s *NotificationService) send(to, templateName string, data map[string]interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("unknown email template %q", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render email template %s: %w", templateName, err)
	}

	subject := emailTemplates[templateName].Subject
	if orderNumber, ok := data["OrderNumber"].(string); ok {
		subject += " - " + orderNumber
	}

	return s.sendEmail(to, subject, buf.String())
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, email not sent")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	from := s.config.Email.FromEmail
	if s.config.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

// notifyAsync sends in the background. A failed email is logged and never
// reaches the request that triggered it.
func notifyAsync(kind, to string, send func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).WithField("email_kind", kind).Error("Email sender panicked")
			}
		}()

		if err := send(); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"email_kind": kind,
				"to":         to,
			}).Warn("Failed to send email")
		}
	}()
}

var emailTemplates = map[string]EmailTemplate{
	"welcome": {
		Subject: "Welcome to the store",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Thanks for creating an account with {{.StoreName}}.</p>
	<a href="{{.ShopURL}}">Start shopping</a>
</body>
</html>`,
	},
	"password_reset": {
		Subject: "Password Reset Request",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>We received a request to reset your password. The link expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset password</a>
	<p>If you did not ask for this you can ignore this email.</p>
</body>
</html>`,
	},
	"order_confirmation": {
		Subject: "Order Confirmation",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order, {{.Name}}!</h2>
	<p>Order <strong>{{.OrderNumber}}</strong> has been placed.</p>
	<ul>
	{{range .Items}}<li>{{.ProductName}} x {{.Quantity}}</li>{{end}}
	</ul>
	<p>Total: {{.FinalAmount}}</p>
	<a href="{{.OrderURL}}">View order</a>
</body>
</html>`,
	},
	"order_status": {
		Subject: "Order Update",
		Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
	{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
	<a href="{{.OrderURL}}">View order</a>
</body>
</html>`,
	},
}
