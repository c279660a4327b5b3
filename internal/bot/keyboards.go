package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trainbot/internal/models"
)

// Callback payloads without parameters.
const (
	cbMenu             = "menu"
	cbLessonKinds      = "lesson_kinds"
	cbQuizList         = "quiz_list"
	cbPracticeKinds    = "practice_kinds"
	cbProgress         = "progress"
	cbLeaderboard      = "leaderboard"
	cbPracticeGenerate = "practice_go"
	cbPracticeRevise   = "practice_revise"
)

func lessonListPayload(kind string) string  { return "lessons:" + kind }
func lessonPayload(lessonID uint) string    { return fmt.Sprintf("lesson:%d", lessonID) }
func stepPayload(lessonID uint, n int) string {
	return fmt.Sprintf("step:%d:%d", lessonID, n)
}
func quizPayload(quizID uint) string     { return fmt.Sprintf("quiz:%d", quizID) }
func practicePayload(kind string) string { return "practice:" + kind }

// payloadArg returns the i-th colon-separated argument after the prefix.
func payloadArg(data string, i int) string {
	parts := strings.Split(data, ":")
	if i+1 >= len(parts) {
		return ""
	}
	return parts[i+1]
}

func payloadUint(data string, i int) (uint, error) {
	v, err := strconv.ParseUint(payloadArg(data, i), 10, 32)
	return uint(v), err
}

func payloadInt(data string, i int) (int, error) {
	return strconv.Atoi(payloadArg(data, i))
}

// mainMenuKeyboard is the top-level activity picker.
func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Lessons", cbLessonKinds),
			tgbotapi.NewInlineKeyboardButtonData("📝 Quizzes", cbQuizList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Practice", cbPracticeKinds),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 My Progress", cbProgress),
			tgbotapi.NewInlineKeyboardButtonData("🏆 Leaderboard", cbLeaderboard),
		),
	)
}

func lessonKindsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 Text prompts", lessonListPayload(models.KindText)),
			tgbotapi.NewInlineKeyboardButtonData("🖼 Image prompts", lessonListPayload(models.KindImage)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Menu", cbMenu),
		),
	)
}

// lessonListKeyboard shows one button per lesson, marking the ones the
// user has fully completed.
func lessonListKeyboard(lessons []models.Lesson, completed map[uint]bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, lesson := range lessons {
		title := lesson.Title
		if completed[lesson.ID] {
			title = "✅ " + title
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title, lessonPayload(lesson.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Back", cbLessonKinds),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// stepKeyboard navigates lesson steps. The last step's forward button
// finishes the lesson instead.
func stepKeyboard(lessonID uint, stepNumber, totalSteps int) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if stepNumber > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("« Back", stepPayload(lessonID, stepNumber-1)))
	}
	if stepNumber < totalSteps {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next »", stepPayload(lessonID, stepNumber+1)))
	} else {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🎉 Finish", stepPayload(lessonID, stepNumber+1)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(nav...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Lessons", cbLessonKinds),
		),
	)
}

func quizListKeyboard(quizzes []models.Quiz) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, quiz := range quizzes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(quiz.Title, quizPayload(quiz.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Menu", cbMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func practiceKindsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 Text prompt", practicePayload(models.KindText)),
			tgbotapi.NewInlineKeyboardButtonData("🖼 Image prompt", practicePayload(models.KindImage)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Menu", cbMenu),
		),
	)
}

// practiceReviewKeyboard offers to run the reviewed prompt or rework it.
func practiceReviewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Generate", cbPracticeGenerate),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Improve", cbPracticeRevise),
		),
	)
}
