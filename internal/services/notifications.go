package services

import (
	"fmt"

	"mindgarden/internal/logging"
)

// NotificationService сводки фоновых задач в настроенный канал.
// Без отправителя все методы - no-op.
type NotificationService struct {
	sender NotificationSender
}

func NewNotificationService(sender NotificationSender) *NotificationService {
	return &NotificationService{sender: sender}
}

// SendWeeklyDigest итог еженедельной генерации отчётов
func (ns *NotificationService) SendWeeklyDigest(generated, failed int) {
	if ns == nil || ns.sender == nil {
		return
	}

	message := fmt.Sprintf(
		"📊 <b>Еженедельные отчёты готовы</b>\n\n"+
			"✅ Сгенерировано: %d\n"+
			"❌ С ошибками: %d",
		generated, failed,
	)

	if err := ns.sender.SendMessage(message); err != nil {
		logging.Warn().Err(err).Msg("⚠️ Ошибка отправки еженедельной сводки")
	}
}

// SendSweepSummary итог ежедневной чистки стриков
func (ns *NotificationService) SendSweepSummary(reset int64) {
	if ns == nil || ns.sender == nil {
		return
	}
	if reset == 0 {
		return
	}

	message := fmt.Sprintf(
		"🌰 <b>Ежедневная чистка стриков</b>\n\nОбнулено: %d",
		reset,
	)

	if err := ns.sender.SendMessage(message); err != nil {
		logging.Warn().Err(err).Msg("⚠️ Ошибка отправки сводки чистки")
	}
}
