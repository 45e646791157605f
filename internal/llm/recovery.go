package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/reamshq/statement-parser/internal/common"
)

// Model responses are supposed to be a bare JSON object but routinely arrive
// wrapped in markdown fences, prefixed with commentary, or littered with
// trailing commas and human-formatted numbers. RecoverJSON runs a fixed
// cascade of targeted strategies and stops at the first one that yields a
// parseable object.
var (
	reFencedJSON      = regexp.MustCompile("(?i)```\\s*json\\s*\\n([\\s\\S]*?)```")
	reFencedAny       = regexp.MustCompile("```\\s*\\n([\\s\\S]*?)```")
	reLangTag         = regexp.MustCompile(`(?i)^\s*json\s*\n`)
	reTrailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	reSeparatedNumber = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?`)
)

// RecoverJSON parses a free-form model response into a key-value record.
// It fails with a MalformedExtractionError only after every strategy and
// repair combination has been exhausted.
func RecoverJSON(raw string) (map[string]any, error) {
	// 1) Raw content as-is.
	if rec, err := parseObject(raw); err == nil {
		return rec, nil
	}

	// 2) Strip a single enclosing fence pair and retry.
	cleaned := stripCodeFences(raw)
	if rec, err := parseObject(cleaned); err == nil {
		return rec, nil
	}

	// 3) A fenced block anywhere in the content, repaired if needed.
	if fenced, ok := extractFencedBlock(raw); ok {
		if rec, err := parseObject(fenced); err == nil {
			return rec, nil
		}
		repaired := removeThousandsSeparators(removeTrailingCommas(fenced))
		if rec, err := parseObject(repaired); err == nil {
			return rec, nil
		}
	}

	// 4) First balanced {...} substring, repaired stepwise.
	if obj, ok := extractFirstJSONObject(cleaned); ok {
		if rec, err := parseObject(obj); err == nil {
			return rec, nil
		}
		sanitized := removeTrailingCommas(obj)
		if rec, err := parseObject(sanitized); err == nil {
			return rec, nil
		}
		if rec, err := parseObject(removeThousandsSeparators(sanitized)); err == nil {
			return rec, nil
		}
	}

	// 5) Last resort: both repairs over the fence-stripped content.
	sanitizedFull := removeTrailingCommas(cleaned)
	if rec, err := parseObject(sanitizedFull); err == nil {
		return rec, nil
	}
	rec, err := parseObject(removeThousandsSeparators(sanitizedFull))
	if err != nil {
		return nil, &common.MalformedExtractionError{Content: raw, Err: err}
	}
	return rec, nil
}

func parseObject(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// stripCodeFences removes one enclosing ``` pair plus an optional language tag.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") && len(content) > 6 {
		content = content[3 : len(content)-3]
	}
	content = reLangTag.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// extractFencedBlock finds the first ```json or plain ``` block anywhere and
// returns its interior.
func extractFencedBlock(content string) (string, bool) {
	if m := reFencedJSON.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := reFencedAny.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// extractFirstJSONObject returns the first balanced {...} substring, tracking
// brace depth while skipping content inside quoted strings and honoring
// backslash escapes.
func extractFirstJSONObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}
	return "", false
}

// removeTrailingCommas drops commas immediately before } or ], repeatedly
// until a fixpoint. Idempotent.
func removeTrailingCommas(content string) string {
	prev := ""
	for prev != content {
		prev = content
		content = reTrailingComma.ReplaceAllString(content, "$1")
	}
	return content
}

// removeThousandsSeparators rewrites unquoted numeric tokens like 12,345.67
// to 12345.67. Quoted string content is left untouched, and a candidate is
// skipped when it abuts a quote or word character.
func removeThousandsSeparators(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	inString := false
	escape := false
	for i := 0; i < len(content); {
		c := content[i]
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			i++
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			i++
			continue
		}
		if c >= '0' && c <= '9' && !isWordOrQuote(prevByte(content, i)) {
			if m := reSeparatedNumber.FindString(content[i:]); m != "" && !isWordOrQuote(nextByte(content, i+len(m))) {
				b.WriteString(strings.ReplaceAll(m, ",", ""))
				i += len(m)
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func prevByte(s string, i int) byte {
	if i == 0 {
		return 0
	}
	return s[i-1]
}

func nextByte(s string, i int) byte {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

func isWordOrQuote(c byte) bool {
	return c == '"' || c == '\'' || c == '_' || c == '.' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
