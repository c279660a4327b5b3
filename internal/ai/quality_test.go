package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"trainbot/internal/models"
)

func TestReviewPrompt(t *testing.T) {
	tests := []struct {
		name           string
		description    string
		prompt         string
		kind           string
		wantAcceptable bool
		wantMinScore   float64
		wantMaxScore   float64
	}{
		{
			name:           "too short",
			description:    "prompts under the minimum length are rejected outright",
			prompt:         "write",
			kind:           models.KindText,
			wantAcceptable: false,
		},
		{
			name:           "short but valid",
			description:    "a minimal prompt passes with a low score",
			prompt:         "write a poem about autumn",
			kind:           models.KindText,
			wantAcceptable: true,
			wantMinScore:   0,
			wantMaxScore:   0.3,
		},
		{
			name:        "rich prompt with aspect keywords",
			description: "covering the quality aspects raises the score",
			prompt: "Write a detailed story with a clear structure and strong clarity. " +
				"Provide context about the setting and keep specificity high in every " +
				"paragraph, describing the characters and their motivations at length.",
			kind:           models.KindText,
			wantAcceptable: true,
			wantMinScore:   0.6,
			wantMaxScore:   1.0,
		},
		{
			name:        "image prompt with aspect keywords",
			description: "image prompts are checked against image aspects",
			prompt: "A majestic mountain landscape as the main subject, painted in " +
				"watercolor style with balanced composition and fine details in the " +
				"foreground, golden hour lighting, high resolution",
			kind:           models.KindImage,
			wantAcceptable: true,
			wantMinScore:   0.6,
			wantMaxScore:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review := ReviewPrompt(tt.prompt, tt.kind)
			assert.Equal(t, tt.wantAcceptable, review.Acceptable, tt.description)
			if !tt.wantAcceptable {
				assert.NotEmpty(t, review.Feedback)
				return
			}
			assert.GreaterOrEqual(t, review.Score, tt.wantMinScore, tt.description)
			assert.LessOrEqual(t, review.Score, tt.wantMaxScore, tt.description)
			assert.NotEmpty(t, review.Feedback)
		})
	}
}

func TestReviewPromptFeedbackMentionsMissingAspects(t *testing.T) {
	review := ReviewPrompt("a very plain request without any of the magic words in it", models.KindText)
	assert.True(t, review.Acceptable)
	for _, aspect := range promptCriteria[models.KindText] {
		assert.True(t, strings.Contains(review.Feedback, aspect), "feedback should mention %q", aspect)
	}
}

func TestReviewPromptScoreCapped(t *testing.T) {
	long := strings.Repeat("clarity specificity context structure detail nuance tone style voice theme ", 20)
	review := ReviewPrompt(long, models.KindText)
	assert.True(t, review.Acceptable)
	assert.LessOrEqual(t, review.Score, 1.0)
}
