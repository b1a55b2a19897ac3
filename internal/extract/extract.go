// Package extract recovers structured JSON from free-form model output.
//
// Hosted models routinely wrap their JSON in prose or markdown fences, so
// strict unmarshalling of the raw response fails often. Slicing from the
// first opening bracket to the last matching close and parsing that span
// tolerates leading and trailing noise while preserving the payload order.
package extract

import (
	"encoding/json"
	"strings"
)

// Array recovers the outermost JSON array embedded in text. The boolean is
// false when no bracket pair exists or the span does not parse; callers
// treat that as an empty result, never an error.
func Array(text string) (json.RawMessage, bool) {
	return slice(text, '[', ']')
}

// Object recovers the outermost JSON object embedded in text.
func Object(text string) (json.RawMessage, bool) {
	return slice(text, '{', '}')
}

// slice takes the span from the first open bracket to the last close
// bracket, inclusive. If the text holds several independent JSON blocks the
// combined span will not parse and the whole call yields no value; that
// trade-off keeps the recovery simple and order-preserving.
func slice(text string, open, close byte) (json.RawMessage, bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return nil, false
	}
	end := strings.LastIndexByte(text, close)
	if end <= start {
		return nil, false
	}

	span := []byte(text[start : end+1])
	if !json.Valid(span) {
		return nil, false
	}
	return json.RawMessage(span), true
}
