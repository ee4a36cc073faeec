package ailink

import "strings"

// sourcesMarker separates the answer section from the context-sources
// section in a follow-up reply.
const sourcesMarker = "Context Sources:"

// stripCodeFence removes a surrounding markdown code fence from model
// output. Models routinely wrap JSON in ```json fences despite being told
// not to; anything else is left untouched.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		// Drop the language tag on the opening fence line (```json, ```python).
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || isFenceTag(firstLine) {
			trimmed = trimmed[idx+1:]
		}
	}

	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func isFenceTag(s string) bool {
	switch strings.ToLower(s) {
	case "json", "python", "javascript", "txt":
		return true
	}
	return false
}

// ParseFollowupReply splits a follow-up reply into the answer text and the
// list of context sources. When the marker is absent the whole reply is the
// answer and the source list is empty; a missing marker is never an error.
func ParseFollowupReply(text string) (string, []string) {
	full := strings.TrimSpace(text)

	answerPart, sourcesPart, found := strings.Cut(full, sourcesMarker)
	reply := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(answerPart), "Answer:"))

	if !found {
		return reply, []string{}
	}

	fragments := strings.Split(sourcesPart, ",")
	sources := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if src := strings.TrimSpace(f); src != "" {
			sources = append(sources, src)
		}
	}

	return reply, sources
}
