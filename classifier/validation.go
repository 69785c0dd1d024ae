package classifier

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrUnexpectedLabel = errors.New("unexpected label")

// Validation controls what happens to oracle output outside the known label set.
type Validation int

const (
	// ValidationOff trusts the trimmed oracle output verbatim.
	ValidationOff Validation = iota
	// ValidationCoerce maps near-matches onto the canonical label. Unknown topics
	// become "Other"; other unknown labels pass through unchanged.
	ValidationCoerce
	// ValidationStrict fails the call when the output is not a known label.
	ValidationStrict
)

func ParseValidation(s string) (Validation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return ValidationOff, nil
	case "coerce":
		return ValidationCoerce, nil
	case "strict":
		return ValidationStrict, nil
	default:
		return ValidationOff, fmt.Errorf("unknown label validation mode: %s", s)
	}
}

func labelsFor(kind Kind) []string {
	switch kind {
	case KindSentiment:
		return sentimentLabels
	case KindTopic:
		return topicLabels
	case KindUrgency:
		return urgencyLabels
	default:
		return nil
	}
}

func validate(mode Validation, kind Kind, label string) (string, error) {
	if mode == ValidationOff {
		return label, nil
	}
	if canonical, ok := match(kind, label); ok {
		return canonical, nil
	}
	if mode == ValidationStrict {
		return "", fmt.Errorf("%w %q", ErrUnexpectedLabel, label)
	}
	if kind == KindTopic {
		return "Other", nil
	}
	return label, nil
}

// match compares labels ignoring case, punctuation and trailing words, so that
// "**positive**." or "High urgency - this is going viral" still resolve.
func match(kind Kind, label string) (string, bool) {
	key := normalizeKey(label)
	if key == "" {
		return "", false
	}
	for _, candidate := range labelsFor(kind) {
		want := normalizeKey(candidate)
		if key == want || strings.HasPrefix(key, want+" ") {
			return candidate, true
		}
	}
	return "", false
}

func normalizeKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '/':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
