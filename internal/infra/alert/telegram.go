package alert

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Notifier carries operational job-pass summaries to whoever is on call.
type Notifier interface {
	PassFinished(job string, sent, skipped, failed int)
}

// TelegramNotifier pushes pass summaries with failures to an admin chat.
type TelegramNotifier struct {
	bot    *telebot.Bot
	chatID int64
	logger *logrus.Entry
}

func NewTelegramNotifier(bot *telebot.Bot, chatID int64, logger *logrus.Entry) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

func (n *TelegramNotifier) PassFinished(job string, sent, skipped, failed int) {
	if failed == 0 {
		return
	}
	text := fmt.Sprintf("⚠️ job %s finished with failures: sent=%d skipped=%d failed=%d", job, sent, skipped, failed)
	if _, err := n.bot.Send(&telebot.Chat{ID: n.chatID}, text); err != nil {
		n.logger.WithError(err).WithField("job", job).Warn("failed to deliver ops alert")
	}
}

// NoopNotifier is used when ops alerting is not configured.
type NoopNotifier struct{}

func (NoopNotifier) PassFinished(string, int, int, int) {}
