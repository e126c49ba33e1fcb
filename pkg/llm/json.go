package llm

import (
	"regexp"
	"strings"
)

// thinkTagPattern matches <think>...</think> tags that reasoning models emit
// before the answer.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// fencePattern matches a response wrapped in one fenced code block, with an
// optional language tag.
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)\r?\n?```$")

// StripThinking removes a leading <think>...</think> block.
func StripThinking(response string) string {
	return thinkTagPattern.ReplaceAllString(response, "")
}

// StripCodeFence removes a fenced code block wrapping the whole response.
// Responses without a surrounding fence are returned trimmed.
func StripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// CleanJSONResponse prepares a structured-output response for decoding by
// dropping reasoning preambles and code fences. It does not validate the body.
func CleanJSONResponse(response string) string {
	return StripCodeFence(StripThinking(response))
}
