package repository

import (
	"fmt"
)

// BuildEntityExtractionPrompt asks the model for named entities as JSON.
// Only PERSON, ORGANIZATION and LOCATION are requested; anything else
// the model volunteers is filtered out by the caller.
func BuildEntityExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract the named entities from the news text below.

Only include entities of these categories:
- PERSON: named people
- ORGANIZATION: companies, institutions, agencies
- LOCATION: countries, cities, regions

Return the entities in order of appearance, in this exact JSON format and nothing else:
{
  "entities": [
    {"text": "<entity text>", "category": "PERSON | ORGANIZATION | LOCATION"}
  ]
}

TEXT:
%s
`, text)
}

// BuildSentimentPrompt asks the model for polarity/subjectivity scores.
func BuildSentimentPrompt(text string) string {
	return fmt.Sprintf(`Score the sentiment of the news text below.

- polarity: a float between -1.0 (very negative) and 1.0 (very positive)
- subjectivity: a float between 0.0 (fully objective) and 1.0 (fully subjective)

Return this exact JSON format and nothing else:
{
  "polarity": <float>,
  "subjectivity": <float>
}

TEXT:
%s
`, text)
}

// BuildSummarizePrompt asks the model for an abstractive summary of
// bounded length.
func BuildSummarizePrompt(text string, minLen, maxLen int) string {
	return fmt.Sprintf(`Summarize the following news article in between %d and %d words.
Return only the summary text, with no preamble.

ARTICLE:
%s
`, minLen, maxLen, text)
}

// BuildAnswerPrompt is the question answering prompt. Its wording is a
// system invariant: it restricts the model to the supplied context and
// tells it to declare when the context is insufficient. Changing it
// changes answer behavior, so it is covered by tests.
func BuildAnswerPrompt(context, question string) string {
	return fmt.Sprintf(`Please act as a helpful AI news analyst.
Answer the following question based ONLY on the context provided below.
If the context does not contain the answer, please state that you cannot answer based on the provided information.

CONTEXT:
%s

QUESTION:
%s

ANSWER:
`, context, question)
}
