package email

import "github.com/sirupsen/logrus"

// NoopClient stands in when SMTP is not configured: sends are logged and
// dropped so dispatch behavior stays identical in environments without an
// email channel.
type NoopClient struct {
	logger *logrus.Entry
}

func NewNoopClient(logger *logrus.Entry) *NoopClient {
	return &NoopClient{logger: logger}
}

func (c *NoopClient) SendCampStartedEmail(to, username, campName string, campID int64) error {
	c.logger.WithFields(logrus.Fields{"to": to, "camp_id": campID}).Debug("email disabled, dropping camp-started email")
	return nil
}

func (c *NoopClient) SendCampFinishedEmail(to, username, campName string, campID int64) error {
	c.logger.WithFields(logrus.Fields{"to": to, "camp_id": campID}).Debug("email disabled, dropping camp-finished email")
	return nil
}
