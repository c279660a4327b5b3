package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name        string
		description string
		response    string
		want        Evaluation
		wantErr     bool
	}{
		{
			name:        "plain JSON verdict",
			description: "a bare JSON object parses directly",
			response:    `{"is_correct": true, "score": 8.5, "feedback": "Good grasp of the topic."}`,
			want:        Evaluation{IsCorrect: true, Score: 8.5, Feedback: "Good grasp of the topic."},
		},
		{
			name:        "verdict wrapped in prose",
			description: "surrounding commentary is stripped before parsing",
			response:    "Here is my evaluation:\n```json\n{\"is_correct\": false, \"score\": 3, \"feedback\": \"Missing key points.\"}\n```\nHope this helps!",
			want:        Evaluation{IsCorrect: false, Score: 3, Feedback: "Missing key points."},
		},
		{
			name:        "score above range is clamped",
			description: "models occasionally overshoot the 0-10 scale",
			response:    `{"is_correct": true, "score": 12, "feedback": "ok"}`,
			want:        Evaluation{IsCorrect: true, Score: 10, Feedback: "ok"},
		},
		{
			name:        "negative score is clamped",
			description: "negative scores are floored at zero",
			response:    `{"is_correct": false, "score": -2, "feedback": "bad"}`,
			want:        Evaluation{IsCorrect: false, Score: 0, Feedback: "bad"},
		},
		{
			name:        "missing feedback gets placeholder",
			description: "an empty feedback field is replaced",
			response:    `{"is_correct": true, "score": 7}`,
			want:        Evaluation{IsCorrect: true, Score: 7, Feedback: "No feedback."},
		},
		{
			name:        "HTML error page",
			description: "gateways sometimes answer with an error page instead of JSON",
			response:    "<!DOCTYPE html><html><body>502 Bad Gateway</body></html>",
			wantErr:     true,
		},
		{
			name:        "no JSON at all",
			description: "free text without an object is rejected",
			response:    "I think the answer is mostly correct.",
			wantErr:     true,
		},
		{
			name:        "malformed JSON",
			description: "a truncated object fails to decode",
			response:    `{"is_correct": true, "score":`,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEvaluation(tt.response)
			if tt.wantErr {
				require.Error(t, err, tt.description)
				return
			}
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))
}
