package bot

import "gopkg.in/telebot.v4"

// mainMenu builds the inline keyboard shown to registered employees on
// /start. Every button carries an action token consumed by the callback
// router.
func mainMenu() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("▶️ Начать смену", "start_shift")),
		menu.Row(
			menu.Data("🍽 Начать перерыв", "lunch_start"),
			menu.Data("☑️ Вернулся", "lunch_end"),
		),
		menu.Row(menu.Data("📝 Завершить смену", "finish_shift")),
		menu.Row(menu.Data("❌ Сегодня не смогу прийти", "absent_today")),
	)
	return menu
}

// forceReply requests a reply to the prompt so the answer arrives as a
// quoted response.
func forceReply() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{ForceReply: true}
}
