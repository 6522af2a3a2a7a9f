package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// maxTitleRunes bounds the title portion of output file names.
const maxTitleRunes = 80

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control characters are removed. Whitespace of any kind,
// tabs and newlines included, collapses to a single space.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	return strings.Join(strings.Fields(name), " ")
}

// ClipFileName builds "<title>_<id>.mp4" for a finished short. Titles are
// sanitized and truncated; an empty title yields "clip_<id>.mp4".
func ClipFileName(title, id string) string {
	id = SanitizeToken(id)
	title = truncateRunes(SanitizeFileName(title), maxTitleRunes)
	title = strings.TrimRight(title, " .-")
	if title == "" {
		title = "clip"
	}
	return title + "_" + id + ".mp4"
}

// SanitizeToken converts a string to a filesystem-safe token. Letters, digits,
// hyphens and underscores are kept (case preserved, clip ids are case
// sensitive); everything else becomes an underscore. Returns "unknown" for
// empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
