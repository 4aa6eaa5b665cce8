// File path: internal/docs/prompts.go
package docs

const summaryPrompt = `Please create a concise summary of the following text.
Focus on the key points, main ideas, and essential information.
The summary should capture the core meaning while being much shorter than the original.

Text to summarize:
%s`

const keywordPrompt = `Extract 5-10 important keywords or key phrases from the following text.
Focus on subject-specific terminology, important concepts, and significant entities.
Return ONLY the keywords, separated by commas, with no additional text or explanation.

Text for keyword extraction:
%s`
