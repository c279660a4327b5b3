package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Evaluation is the judge's verdict on one quiz answer.
type Evaluation struct {
	IsCorrect bool    `json:"is_correct"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback"`
}

// unavailableEvaluation is the degraded verdict used whenever the judge
// cannot produce a usable result. Scoring zero instead of failing keeps
// the quiz flow moving.
func unavailableEvaluation(feedback string) Evaluation {
	return Evaluation{IsCorrect: false, Score: 0, Feedback: feedback}
}

// jsonObjectRe grabs the widest {...} span so verdicts wrapped in prose
// or markdown fences still parse.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

const evaluationPromptTemplate = `Evaluate the answer to the question on a scale from 0 to 10. Response format - JSON:
{
    "is_correct": true/false, // Is the answer correct
    "score": 0-10, // Score from 0 to 10
    "feedback": "string" // Explanation of the score
}

Question: %s
Answer: %s
`

// EvaluateAnswer asks the text provider to judge a free-text quiz answer.
// Any failure degrades to a zero-score verdict rather than an error so
// callers never block the quiz on the judge.
func (c *Client) EvaluateAnswer(ctx context.Context, question, answer string) Evaluation {
	if !c.TextAvailable() {
		c.logger.Warn("answer evaluation skipped: text provider unavailable")
		return unavailableEvaluation("Answer evaluation service is unavailable.")
	}

	prompt := fmt.Sprintf(evaluationPromptTemplate, question, answer)
	response, err := c.GenerateText(ctx, prompt)
	if err != nil {
		c.logger.Error("answer evaluation request failed", zap.Error(err))
		return unavailableEvaluation("Error evaluating answer.")
	}

	verdict, err := parseEvaluation(response)
	if err != nil {
		c.logger.Error("failed to parse evaluation response",
			zap.Error(err),
			zap.String("response", truncate(response, 200)))
		return unavailableEvaluation("Error processing evaluation.")
	}
	return verdict
}

// parseEvaluation pulls the JSON verdict out of a model response that may
// include surrounding prose. Some misconfigured gateways answer with an
// HTML error page; detect that before attempting to parse.
func parseEvaluation(response string) (Evaluation, error) {
	if strings.Contains(response, "<!DOCTYPE html>") || strings.Contains(response, "<html>") {
		return Evaluation{}, fmt.Errorf("response is an HTML page, not JSON")
	}

	match := jsonObjectRe.FindString(response)
	if match == "" {
		return Evaluation{}, fmt.Errorf("no JSON object found in response")
	}

	var raw struct {
		IsCorrect bool        `json:"is_correct"`
		Score     json.Number `json:"score"`
		Feedback  string      `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return Evaluation{}, fmt.Errorf("failed to decode verdict: %w", err)
	}

	score, err := raw.Score.Float64()
	if err != nil && raw.Score != "" {
		return Evaluation{}, fmt.Errorf("non-numeric score %q", raw.Score)
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	feedback := raw.Feedback
	if feedback == "" {
		feedback = "No feedback."
	}
	return Evaluation{IsCorrect: raw.IsCorrect, Score: score, Feedback: feedback}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
