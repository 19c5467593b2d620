package analyzer

import "fmt"

// promptTemplate is part of the provider contract: three-way classification
// and a JSON object with exactly the keys label and confidence_scores.
const promptTemplate = `
Analyze the sentiment of the following text and classify it as "positive", "negative", or "neutral".
Provide your response as a JSON object with two keys: 'label' and 'confidence_scores'.
The 'label' should be your classification.
The 'confidence_scores' should be a JSON object with the keys "positive", "negative", and "neutral",
representing the model's confidence in each classification (values should sum to 1.0).

Text to analyze: "%s"

JSON Response:
`

// BuildPrompt embeds text verbatim into the sentiment instruction.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
