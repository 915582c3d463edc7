package summarize

import "fmt"

const systemPrompt = "You are a professional financial analyst with expertise in Indian corporate announcements and stock market regulations."

// BuildPrompt produces the fixed structured summarization prompt for one
// announcement document.
func BuildPrompt(text, companyName string) string {
	return fmt.Sprintf(`You are a financial analyst specializing in Indian stock market announcements. Please analyze and summarize the following corporate announcement document for %s.

Document Text:
%s

Please provide a structured summary that includes:

1. **Document Type**: What type of announcement is this? (AGM, EGM, Quarterly Results, Dividend, Board Meeting, etc.)

2. **Summary**: A concise 2-3 sentence summary of the most important information

3. **Sentiment Analysis**: Assess the overall sentiment of the announcement (e.g., Positive, Negative, Neutral) and briefly explain your reasoning.

4. **Key Dates**: Extract any important dates mentioned (meeting dates, record dates, ex-dates, etc.)

5. **Financial Highlights**: Any financial figures, ratios, or performance metrics mentioned

6. **Corporate Actions**: Any dividends, bonuses, stock splits, or other corporate actions

7. **Business Updates**: Any significant business developments, partnerships, or strategic initiatives

8. **Regulatory Compliance**: Any regulatory filings, compliance updates, or SEBI-related information

Format your response as a clear, structured summary that would be useful for investors and analysts.`, companyName, text)
}
