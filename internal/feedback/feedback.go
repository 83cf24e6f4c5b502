// Package feedback scores a finished negotiation and builds the report.
package feedback

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/parleyhq/parley/internal/core"
)

// Generate computes feedback for a conversation. It is a pure function of
// the transcript and scenario: no external calls, deterministic output.
//
// The metrics are deliberately crude: clarity is the user's total transcript
// length over 100, persuasiveness the counterpart's, both capped at 10, and
// the total is their mean. Length is a stand-in for substance; replacing it
// with real analysis only requires keeping the report shape.
func Generate(conversation core.Conversation, scenario string) *core.Feedback {
	var userChars, aiChars int
	for _, turn := range conversation {
		userChars += utf8.RuneCountInString(turn.User)
		aiChars += utf8.RuneCountInString(turn.AI)
	}

	clarity := math.Min(float64(userChars)/100, 10)
	persuasiveness := math.Min(float64(aiChars)/100, 10)
	total := (clarity + persuasiveness) / 2

	return &core.Feedback{
		Summary: "You demonstrated good negotiation skills but could improve on clarity and structure.",
		Improvements: []string{
			"Be more concise in your arguments.",
			"Use data and examples to support your points.",
			"Practice active listening to better understand the other party.",
		},
		Score: core.Scores{
			Clarity:        clarity,
			Persuasiveness: persuasiveness,
			Total:          total,
		},
		PointsToConsider:    pointsToConsider(scenario),
		PerformanceAnalysis: performanceAnalysis(clarity, persuasiveness, total),
	}
}

func pointsToConsider(scenario string) string {
	return fmt.Sprintf(`### Points to Consider When Initiating Negotiation:
1. **Preparation**: Research the topic thoroughly. For example, in a %s, understand market rates, company policies, and your own achievements.
2. **Clear Objectives**: Define what you want to achieve. For instance, in a %s, decide on the exact salary increase or benefits you are seeking.
3. **Active Listening**: Pay attention to the other party's concerns and respond thoughtfully.
4. **Flexibility**: Be open to compromise and alternative solutions.`, scenario, scenario)
}

func performanceAnalysis(clarity, persuasiveness, total float64) string {
	return fmt.Sprintf(`### Detailed Performance Analysis:
- **Clarity**: Your clarity score is %.2f/10. This reflects how clearly you communicated your points.
- **Persuasiveness**: Your persuasiveness score is %.2f/10. This reflects how effectively you convinced the other party.
- **Total Score**: Your overall performance score is %.2f/10.

**Areas for Improvement**:
1. **Be More Concise**: Avoid lengthy explanations. Focus on key points.
2. **Use Data and Examples**: Support your arguments with data and specific examples.
3. **Practice Active Listening**: Respond to the other party's concerns more effectively.`, clarity, persuasiveness, total)
}
