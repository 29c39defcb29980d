package otp

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// EmailSender delivers codes over SMTP with a small HTML body.
type EmailSender struct {
	host   string
	port   int
	user   string
	pass   string
	sender string
	log    zerolog.Logger
}

// NewEmailSender creates a new SMTP sender
func NewEmailSender(host string, port int, user, pass, sender string, log zerolog.Logger) *EmailSender {
	return &EmailSender{
		host:   host,
		port:   port,
		user:   user,
		pass:   pass,
		sender: sender,
		log:    log.With().Str("client", "smtp").Logger(),
	}
}

// SendCode delivers a verification code to an email address.
func (e *EmailSender) SendCode(email, code string) error {
	body := fmt.Sprintf(
		"From: StockPro <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: Your StockPro verification code\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"<html><body>"+
			"<p>Your StockPro verification code is:</p>"+
			"<h2>%s</h2>"+
			"<p>The code expires in 5 minutes. If you did not request it, ignore this email.</p>"+
			"</body></html>\r\n",
		e.sender, email, code,
	)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.user, e.pass, e.host)

	if err := smtp.SendMail(addr, auth, e.sender, []string{email}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.log.Debug().Str("email", email).Msg("Verification email sent")
	return nil
}
