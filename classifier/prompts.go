package classifier

const sentimentInstruction = "Analyze the sentiment of the following text. Is it Positive, Negative, or Neutral? Answer with only one word."

const topicInstruction = `You are a text analysis engine. Read the following text and assign the single best-fitting category from the list below.

Categories:
* Customer Service Issue: problems with support, billing, shipping, or account interaction.
* Product Defect/Bug: the product is broken, crashing, or not working as intended.
* High Price Complaint: feedback that the product or service is too expensive.
* Positive Review: general praise, compliments, or success stories.
* Competitor Comparison: the text explicitly mentions a competitor.
* Feature Request: a suggestion for a new feature or an improvement to an existing one.
* PR/News: a press release, news article, or public announcement.
* Other: anything that does not clearly fit one of the categories above (general inquiry, spam, wrong recipient).

Rules:
1. Choose only one category.
2. If none of the specific categories is a good match, you must answer 'Other'.
3. Output only the category name.`

const urgencyInstruction = `You are a PR crisis manager. Read this text. Is this a 'High Urgency' issue
(e.g. safety risk, potential PR crisis, going viral) or a 'Low Urgency'
issue (e.g. single user complaint, question)? Answer with 'High Urgency' or 'Low Urgency'.`

var (
	sentimentLabels = []string{"Positive", "Negative", "Neutral"}
	topicLabels     = []string{
		"Customer Service Issue",
		"Product Defect/Bug",
		"High Price Complaint",
		"Positive Review",
		"Competitor Comparison",
		"Feature Request",
		"PR/News",
		"Other",
	}
	urgencyLabels = []string{"High Urgency", "Low Urgency"}
)

func buildPrompt(instruction string, text string) string {
	return instruction + "\n\nText to analyze:\n" + text
}
