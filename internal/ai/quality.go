package ai

import (
	"fmt"
	"strings"

	"trainbot/internal/models"
)

// PromptReview is the local pre-flight assessment of a practice prompt,
// produced without calling any provider.
type PromptReview struct {
	Acceptable bool
	Score      float64 // 0..1
	Feedback   string
}

// Aspect keywords checked per prompt kind. Matching any inflected form
// of an aspect word earns partial credit.
var promptCriteria = map[string][]string{
	models.KindText:  {"clarity", "specificity", "context", "structure"},
	models.KindImage: {"subject", "style", "composition", "details"},
}

const minPromptLength = 10

// ReviewPrompt scores a practice prompt with a cheap heuristic: length,
// vocabulary breadth, and coverage of the kind's quality aspects. It
// gates obviously weak prompts before a provider call is spent on them.
func ReviewPrompt(prompt, kind string) PromptReview {
	if len(prompt) < minPromptLength {
		return PromptReview{
			Acceptable: false,
			Feedback:   "Prompt is too short. Add more details.",
		}
	}

	lower := strings.ToLower(prompt)
	words := strings.Fields(lower)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	lengthScore := clamp01(float64(len(prompt))/200) * 0.3
	vocabScore := clamp01(float64(len(unique))/30) * 0.3
	score := lengthScore + vocabScore

	var notes []string
	for _, criterion := range promptCriteria[kind] {
		if containsInflected(lower, criterion) {
			score += 0.1
			notes = append(notes, fmt.Sprintf("✓ Well described aspect '%s'", criterion))
		} else {
			notes = append(notes, fmt.Sprintf("✗ It is recommended to add description of aspect '%s'", criterion))
		}
	}
	score = clamp01(score)

	var lead string
	switch {
	case score < 0.3:
		lead = "Your prompt needs significant improvement. "
	case score < 0.6:
		lead = "Your prompt is decent, but there's room for improvement. "
	default:
		lead = "Excellent prompt! "
	}

	return PromptReview{
		Acceptable: true,
		Score:      score,
		Feedback:   lead + strings.Join(notes, "\n"),
	}
}

func containsInflected(lower, criterion string) bool {
	for _, form := range []string{criterion, criterion + "s", criterion + "ed", criterion + "ing"} {
		if strings.Contains(lower, form) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
