package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/mentora-app/mentora-backend/internal/types"
)

const (
	maxPromptMessages     = 3
	maxMessageChars       = 300
	maxNotePreviewChars   = 200
	maxHelpfulExamples    = 15
	maxNotHelpfulExamples = 15
	maxDismissedExamples  = 10
)

// buildInsightPrompt renders the aggregated activity and reaction history as
// one plain-text document. The downstream generator is sensitive to prompt
// structure, so section order and truncation limits are fixed; the only
// conditional is a placeholder line when a section's source list is empty.
func buildInsightPrompt(snapshot *ActivitySnapshot, feedback *reactionSummary) string {
	var b strings.Builder

	b.WriteString("## User Profile & Context\n")
	if len(snapshot.ContextItems) == 0 {
		b.WriteString("No personal context items.\n")
	}
	for _, item := range snapshot.ContextItems {
		fmt.Fprintf(&b, "- [%s] %s\n", item.Type, item.Title)
	}

	b.WriteString("\n## Learning Activity\n")
	if len(snapshot.Courses) == 0 {
		b.WriteString("No course activity.\n")
	}
	for _, course := range snapshot.Courses {
		title := course.Title
		if title == "" {
			title = "Untitled course"
		}
		fmt.Fprintf(&b, "- %s: %d%% complete (%d/%d lessons)\n",
			title, course.CompletionPct, course.CompletedLessons, course.TotalLessons)
	}
	fmt.Fprintf(&b, "Total watch time: %dh %dm\n", snapshot.WatchHours, snapshot.WatchMinutes)
	fmt.Fprintf(&b, "Total credits: %d\n", snapshot.TotalCredits)
	fmt.Fprintf(&b, "Certificates earned: %d\n", len(snapshot.Certificates))

	b.WriteString("\n## Conversation History\n")
	if len(snapshot.Conversations) == 0 {
		b.WriteString("No conversations yet.\n")
	}
	for _, conv := range snapshot.Conversations {
		title := conv.Conversation.Title
		if title == "" {
			title = "Untitled conversation"
		}
		fmt.Fprintf(&b, "### %s\n", title)
		messages := conv.Messages
		if len(messages) > maxPromptMessages {
			messages = messages[len(messages)-maxPromptMessages:]
		}
		for _, m := range messages {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, truncate(m.Content, maxMessageChars))
		}
	}

	b.WriteString("\n## AI Interaction Patterns\n")
	if snapshot.AIUsage.Total == 0 {
		b.WriteString("No AI interactions recorded.\n")
	} else {
		fmt.Fprintf(&b, "Total interactions: %d\n", snapshot.AIUsage.Total)
		for _, agent := range snapshot.AIUsage.AgentOrder {
			fmt.Fprintf(&b, "- %s: %d\n", agent, snapshot.AIUsage.PerAgent[agent])
		}
		fmt.Fprintf(&b, "Active period: %s to %s\n",
			snapshot.AIUsage.ActiveFrom.Format(time.RFC3339),
			snapshot.AIUsage.ActiveTo.Format(time.RFC3339))
	}

	b.WriteString("\n## Notes\n")
	if len(snapshot.Notes) == 0 {
		b.WriteString("No notes.\n")
	}
	for _, note := range snapshot.Notes {
		fmt.Fprintf(&b, "- %s: %s (%s)\n",
			note.Title, truncate(note.Content, maxNotePreviewChars),
			note.CreatedAt.Format(time.RFC3339))
	}

	writeReactionSection(&b, feedback)
	writeInstructionBlock(&b)
	return b.String()
}

func writeReactionSection(b *strings.Builder, feedback *reactionSummary) {
	b.WriteString("\n## Past Insight Reactions\n")
	if feedback == nil || feedback.empty() {
		b.WriteString("No past reactions yet.\n")
		return
	}

	b.WriteString("Marked helpful:\n")
	for i, insight := range feedback.Helpful {
		if i >= maxHelpfulExamples {
			break
		}
		fmt.Fprintf(b, "- [%s] %s\n", insight.Category, insight.Title)
	}
	b.WriteString("Marked not helpful:\n")
	for i, insight := range feedback.NotHelpful {
		if i >= maxNotHelpfulExamples {
			break
		}
		fmt.Fprintf(b, "- [%s] %s\n", insight.Category, insight.Title)
	}
	b.WriteString("Dismissed without reaction:\n")
	for i, insight := range feedback.DismissedOnly {
		if i >= maxDismissedExamples {
			break
		}
		fmt.Fprintf(b, "- [%s] %s\n", insight.Category, insight.Title)
	}

	b.WriteString("Category preference scores (0=disliked, 1=liked):\n")
	for _, cat := range types.InsightCategories {
		cs := feedback.Categories[cat]
		fmt.Fprintf(b, "- %s: %.2f (helpful=%d not_helpful=%d dismissed=%d)\n",
			cat, cs.Score, cs.Helpful, cs.NotHelpful, cs.Dismissed)
	}
}

func writeInstructionBlock(b *strings.Builder) {
	b.WriteString(`
## Instructions
Based on everything above, generate 5-10 personal insights about this learner.
Respond with ONLY a JSON array. Each element must have exactly these fields:
- "title": short observation headline
- "summary": 1-2 sentence summary
- "full_content": one paragraph expanding on the observation
- "category": one of growth_opportunity, learning_pattern, strength, connection, goal_alignment, recommendation
- "confidence": one of high, medium, low

Reaction-aware rules:
1. Favor categories with high preference scores.
2. Avoid repeating the framing of insights the user marked not helpful or dismissed.
3. Only include insights for low-scoring categories when confidence is high.
4. Match the tone and specificity of insights the user marked helpful.
5. Adjust the balance between observational and prescriptive insights to fit past reactions.
`)
}

// truncate caps s at max characters, never splitting a multibyte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
