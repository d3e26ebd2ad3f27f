package gateway

import (
	"fmt"
	"strings"

	"github.com/coco-labs/coco/internal/session"
)

func suggestionSystemPrompt(p session.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert conversation coach helping %s achieve their desired outcome from this conversation by coaching, prompting and guiding them in real time during the conversation.

User Details:
- Conversation Details: %s
- Goal: %s
`, p.UserName, p.Context, p.Goal)
	if p.Participants != "" {
		fmt.Fprintf(&b, "- Participants: %s\n", p.Participants)
	}
	if p.Tone != "" {
		fmt.Fprintf(&b, "- Desired Tone: %s\n", p.Tone)
	}
	b.WriteString(`
Your task is to analyze the recent conversation and provide ONE short, actionable coaching tip (max 10 words) to help them achieve their goal with the conversation. Be encouraging and specific, remembering this is streaming in real time and should help them navigate the conversation as it's happening.`)
	return b.String()
}

func suggestionUserPrompt(p session.Profile, recent []session.Exchange) string {
	var lines []string
	for _, ex := range recent {
		lines = append(lines, ex.Role+": "+ex.Content)
	}
	return fmt.Sprintf("Recent conversation:\n%s\n\nWhat coaching tip would help %s right now?",
		strings.Join(lines, "\n"), p.UserName)
}

const analysisSystemPrompt = "You are an expert conversation coach providing feedback on a conversation the user has just had. Your goal is to encourage and help them improve their conversation skills for future conversations, bearing in mind their goal for the conversation and how it went. Always respond with valid JSON."

func analysisUserPrompt(p session.Profile, transcript string) string {
	var b strings.Builder
	b.WriteString("You are analyzing a conversation coaching session.\n\nUser Details:\n")
	fmt.Fprintf(&b, "- Name: %s\n- Conversation Details: %s\n- Goal: %s\n", p.UserName, p.Context, p.Goal)
	if p.Participants != "" {
		fmt.Fprintf(&b, "- Participants: %s\n", p.Participants)
	}
	if p.Tone != "" {
		fmt.Fprintf(&b, "- Desired Tone: %s\n", p.Tone)
	}
	fmt.Fprintf(&b, `
Full Transcript:
%s

Analyze ONLY the user's speech (name: %s). Provide:

1. Two stars (2 things they did well)
2. One wish (1 area for improvement)
3. Filler percentage (%% of their words that were fillers e.g. "um", "uh", "like", "you know")
4. Three key takeaways
5. 3-5 summary bullets of the conversation

Return as JSON:
{
    "stars": ["star 1", "star 2"],
    "wish": "one wish",
    "filler_percentage": 5.2,
    "takeaways": ["takeaway 1", "takeaway 2", "takeaway 3"],
    "summary_bullets": ["bullet 1", "bullet 2", "bullet 3"]
}
`, transcript, p.UserName)
	return b.String()
}
