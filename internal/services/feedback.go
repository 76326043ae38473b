package services

import (
	"sort"
	"strings"

	"github.com/mentora-app/mentora-backend/internal/types"
)

const maxTopics = 8

// Stopwords dropped during topic extraction, alongside any token of length
// three or less.
var topicStopwords = map[string]bool{
	"your": true, "with": true, "that": true, "this": true, "from": true,
	"have": true, "more": true, "than": true, "them": true, "they": true,
	"when": true, "what": true, "which": true, "will": true, "would": true,
	"could": true, "should": true, "about": true, "into": true, "over": true,
	"their": true, "there": true, "these": true, "those": true, "been": true,
	"being": true, "were": true, "while": true, "during": true, "often": true,
	"very": true, "much": true, "some": true, "most": true, "each": true,
	"also": true, "between": true, "through": true, "across": true,
	"keep": true, "keeps": true, "make": true, "makes": true, "using": true,
	"show": true, "shows": true, "like": true, "tend": true, "tends": true,
}

type categoryScore struct {
	Helpful    int
	NotHelpful int
	Dismissed  int
	Score      float64
}

// reactionSummary partitions a user's past insights by how they reacted.
// DismissedOnly holds dismissals that never got an explicit reaction.
type reactionSummary struct {
	Helpful       []*types.PersonalInsight
	NotHelpful    []*types.PersonalInsight
	DismissedOnly []*types.PersonalInsight
	Categories    map[string]categoryScore
}

func (r *reactionSummary) empty() bool {
	return len(r.Helpful) == 0 && len(r.NotHelpful) == 0 && len(r.DismissedOnly) == 0
}

func (r *reactionSummary) actioned() int {
	return len(r.Helpful) + len(r.NotHelpful) + len(r.DismissedOnly)
}

// summarizeReactions computes per-category helpfulness scores from past
// reactions. Score is helpful/(helpful+not_helpful+dismissed); categories
// with no recorded reactions sit at the 0.5 neutral prior.
func summarizeReactions(insights []*types.PersonalInsight) *reactionSummary {
	out := &reactionSummary{Categories: map[string]categoryScore{}}
	for _, cat := range types.InsightCategories {
		out.Categories[cat] = categoryScore{Score: 0.5}
	}

	for _, insight := range insights {
		cs := out.Categories[insight.Category]
		switch {
		case insight.Reaction != nil && *insight.Reaction == types.InsightReactionHelpful:
			out.Helpful = append(out.Helpful, insight)
			cs.Helpful++
		case insight.Reaction != nil && *insight.Reaction == types.InsightReactionNotHelpful:
			out.NotHelpful = append(out.NotHelpful, insight)
			cs.NotHelpful++
		case insight.Status == types.InsightStatusDismissed:
			out.DismissedOnly = append(out.DismissedOnly, insight)
			cs.Dismissed++
		default:
			continue
		}
		total := cs.Helpful + cs.NotHelpful + cs.Dismissed
		if total > 0 {
			cs.Score = float64(cs.Helpful) / float64(total)
		}
		out.Categories[insight.Category] = cs
	}
	return out
}

// extractTopics pulls frequency-ranked keyword and bigram topics out of
// insight titles. Ties keep first-seen order: the sort is stable and only
// compares counts.
func extractTopics(titles []string, max int) []string {
	if max <= 0 {
		max = maxTopics
	}

	counts := map[string]int{}
	var order []string
	bump := func(token string) {
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}

	for _, title := range titles {
		tokens := tokenizeTitle(title)
		for i, tok := range tokens {
			bump(tok)
			if i+1 < len(tokens) {
				bump(tok + " " + tokens[i+1])
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}

func tokenizeTitle(title string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var out []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) <= 3 || topicStopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// engagementTier classifies how many insight-reaction actions a user has
// taken: >=20 high, >=5 medium, else low.
func engagementTier(actioned int) string {
	switch {
	case actioned >= 20:
		return "high"
	case actioned >= 5:
		return "medium"
	default:
		return "low"
	}
}
