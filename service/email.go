package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"catering/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled returned when SMTP is not configured
var ErrEmailDisabled = errors.New("email service is disabled, set CATERING_EMAIL_ENABLED=true")

// EmailService sends share links over SMTP
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates the email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether SMTP delivery is configured
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendMenuShareEmail mails the public preview link of a menu
func (s *EmailService) SendMenuShareEmail(toEmail, senderEmail, menuName, link, note string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	subject := fmt.Sprintf("Menu shared with you: %s", menuName)
	body := s.generateShareEmailBody(senderEmail, menuName, link, note)

	return s.sendEmail(toEmail, subject, body)
}

func (s *EmailService) generateShareEmailBody(senderEmail, menuName, link, note string) string {
	from := "A caterer"
	if senderEmail != "" {
		from = html.EscapeString(senderEmail)
	}
	noteBlock := ""
	if strings.TrimSpace(note) != "" {
		noteBlock = fmt.Sprintf(`<div class="note"><p>%s</p></div>`, html.EscapeString(note))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #f97316, #ea580c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .btn { display: inline-block; background: #ea580c; color: white !important; text-decoration: none; padding: 14px 40px; border-radius: 8px; font-weight: 600; margin: 20px 0; }
        .note { background: #fff7ed; border-left: 4px solid #f97316; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .note p { margin: 0; color: #7c2d12; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
        .link { word-break: break-all; color: #ea580c; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
        </div>
        <div class="content">
            <p><strong>%s</strong> shared a catering menu with you.</p>
            %s
            <p style="text-align: center;">
                <a href="%s" class="btn">View menu</a>
            </p>
            <p>If the button does not work, open this link in your browser:</p>
            <p class="link">%s</p>
        </div>
        <div class="footer">
            <p>This message was sent automatically, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(menuName), from, noteBlock, html.EscapeString(link), html.EscapeString(link))
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.From, "Catering Menus"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

// SendTestEmail checks the SMTP settings
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>Email delivery works</h2>
    <p>If you can read this, the catering service SMTP settings are correct.</p>
</body>
</html>
`
	return s.sendEmail(toEmail, "Catering menus: email test", body)
}
