package mail

import (
	"fmt"
	"log"

	gomail "gopkg.in/gomail.v2"
)

// 確認メールや注文通知の送信窓口。
// 失敗しても本処理は止めない前提なので、呼び出し側はエラーをログに落とすだけでよい。
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail send to %s: %w", to, err)
	}
	return nil
}

// SMTP未設定の環境向け。内容をログに出すだけ。
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("mail (dry-run) to=%s subject=%q", to, subject)
	return nil
}
