package rag

import (
	"fmt"
	"strings"

	"github.com/badi-al-zaman/ragchat/internal/retriever"
)

// Augment builds the prompt sent to the LLM from a question and its
// retrieved context. Each result becomes a numbered source block with its
// article title followed by the chunk content. When no results are available
// the prompt says so instead of leaving the resources section empty.
func Augment(query string, results []retriever.SearchResult) string {
	var context string
	if len(results) == 0 {
		context = "(no relevant resources were found)"
	} else {
		parts := make([]string, 0, len(results))
		for i, result := range results {
			title, _ := result.Metadata["title"].(string)
			parts = append(parts, fmt.Sprintf("Source %d: %s\n%s", i+1, title, result.Content))
		}
		context = strings.Join(parts, "\n\n")
	}

	return fmt.Sprintf(`Based on the following resources, answer the user question.

resources:
%s

QUESTION: %s

Please provide a clear, accurate answer based on the resources above.
If the information is not available in the resources, say so.
Include relevant resources details and any limitations or requirements.
`, context, query)
}
