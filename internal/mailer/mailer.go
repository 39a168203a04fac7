package mailer

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Sender delivers transactional mail. The SMTP implementation is used in
// prod; dev runs log the message instead of dialing out.
type Sender interface {
	SendOTP(to, code string) error
}

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
}

func NewSMTPSender(host, port, user, pass string) *SMTPSender {
	return &SMTPSender{host: host, port: port, username: user, password: pass}
}

func (s *SMTPSender) SendOTP(to, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("<p>Your verification code is <b>%s</b>. It expires shortly.</p>", code)
	return s.send(to, subject, body)
}

// send speaks SMTP over implicit TLS (port 465 style).
func (s *SMTPSender) send(to, subject, body string) error {
	from := s.username
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	addr := s.host + ":" + s.port
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

// LogSender writes the code to the log instead of sending mail.
type LogSender struct{ Log *slog.Logger }

func (l LogSender) SendOTP(to, code string) error {
	l.Log.Info("otp issued", "email", to, "code", code)
	return nil
}
