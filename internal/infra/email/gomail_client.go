package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// GomailClient sends camp lifecycle emails over SMTP. Callers treat sends
// as fire-and-forget; errors are returned only so they can be logged.
type GomailClient struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailClient(host string, port int, user, password, from string) *GomailClient {
	return &GomailClient{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (c *GomailClient) SendCampStartedEmail(to, username, campName string, campID int64) error {
	subject := fmt.Sprintf("بدأ مخيم %s!", campName)
	body := fmt.Sprintf(
		"مرحباً %s،<br><br>انطلق اليوم مخيم <b>%s</b>! مهام اليوم الأول بانتظارك.<br><br>بالتوفيق!",
		username, campName,
	)
	return c.send(to, subject, body, campID)
}

func (c *GomailClient) SendCampFinishedEmail(to, username, campName string, campID int64) error {
	subject := fmt.Sprintf("انتهى مخيم %s", campName)
	body := fmt.Sprintf(
		"مرحباً %s،<br><br>وصل مخيم <b>%s</b> إلى نهايته. تهانينا على ما أنجزته خلاله!<br><br>نراك في المخيم القادم.",
		username, campName,
	)
	return c.send(to, subject, body, campID)
}

func (c *GomailClient) send(to, subject, body string, campID int64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("X-Camp-ID", fmt.Sprintf("%d", campID))
	m.SetBody("text/html", body)

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}
