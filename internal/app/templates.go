package app

import (
	"fmt"
	"strconv"
	"strings"

	"camp_notifier/internal/domain/activity"
	"camp_notifier/internal/domain/camp"
)

// Notification copy is fixed Arabic text with interpolated camp/task/points
// values. Scheduled daily messages are the one templated type: admins author
// them with {day} and {camp_name} placeholders.

// campFinishedTitlePattern is the fuzzy fragment the achievement dedup
// check matches on.
const campFinishedTitlePattern = "انتهى مخيم"

func renderDailyReminder(username, campName string, day, pending int) (title, message string) {
	title = "تذكير بمهام اليوم ⏰"
	message = fmt.Sprintf(
		"يا %s، لديك %d من المهام غير المنجزة في اليوم %d من مخيم %s. أنجزها الآن وحافظ على نقاطك!",
		username, pending, day, campName,
	)
	return title, message
}

func renderCampStarted(username, campName string) (title, message string) {
	title = fmt.Sprintf("بدأ مخيم %s! 🚀", campName)
	message = fmt.Sprintf(
		"يا %s، انطلق مخيم %s اليوم. مهام اليوم الأول بانتظارك، بالتوفيق!",
		username, campName,
	)
	return title, message
}

func renderCampFinished(username, campName string) (title, message string) {
	title = fmt.Sprintf("%s %s 🎉", campFinishedTitlePattern, campName)
	message = fmt.Sprintf(
		"تهانينا يا %s! وصل مخيم %s إلى نهايته. راجع إنجازاتك ونقاطك في صفحة المخيم.",
		username, campName,
	)
	return title, message
}

// renderScheduledMessage substitutes {day} and {camp_name} in admin-authored
// broadcast copy.
func renderScheduledMessage(m camp.ScheduledMessage, day int, campName string) (title, message string) {
	r := strings.NewReplacer(
		"{day}", strconv.Itoa(day),
		"{camp_name}", campName,
	)
	return r.Replace(m.Title), r.Replace(m.Message)
}

func renderFriendsDigest(items []activity.FriendActivity) (title, message string) {
	title = "ماذا فعل أصدقاؤك اليوم؟ 👀"
	var b strings.Builder
	b.WriteString("ملخص نشاط أصدقائك خلال الـ 24 ساعة الماضية:\n")
	for _, it := range items {
		b.WriteString(fmt.Sprintf(
			"• %s: أنجز %d من المهام، شارك %d من التأملات، وأعلى سلسلة إنجاز %d يوماً\n",
			it.Username, it.TasksCompleted, it.ReflectionsShared, it.MaxStreak,
		))
	}
	b.WriteString("انضم إليهم وواصل تقدمك!")
	return title, b.String()
}
