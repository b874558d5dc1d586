package console

import (
	"strings"
	"unicode/utf8"
)

// Minecraft formats text with a section sign followed by one code byte.
const sectionSign = "§"

const ansiReset = "\033[0m"

var ansiColors = map[byte]string{
	'0': "\033[0;30m",   // BLACK
	'1': "\033[0;34m",   // BLUE
	'2': "\033[0;32m",   // GREEN
	'3': "\033[0;36m",   // CYAN
	'4': "\033[0;31m",   // RED
	'5': "\033[0;35m",   // PURPLE
	'6': "\033[0;33m",   // GOLD
	'7': "\033[0;37m",   // GREY
	'8': "\033[0;1;30m", // DGREY
	'9': "\033[0;1;34m", // LBLUE
	'a': "\033[0;1;32m", // LGREEN
	'b': "\033[0;1;36m", // LCYAN
	'c': "\033[0;1;31m", // LRED
	'd': "\033[0;1;35m", // LPURPLE
	'e': "\033[0;1;33m", // YELLOW
	'f': "\033[0;1;37m", // WHITE
	'n': "\033[4m",      // UNDERLINE
	'r': ansiReset,      // RESET
}

// stripColorCodes removes Minecraft color codes
func stripColorCodes(text string) string {
	return formatColors(text, false)
}

// convertColorCodes converts Minecraft color codes to ANSI, resetting at
// every line end.
func convertColorCodes(text string) string {
	return formatColors(text, true) + ansiReset
}

func formatColors(text string, ansi bool) string {
	var result strings.Builder
	result.Grow(len(text))

	plain := func(s string) {
		if ansi {
			s = strings.ReplaceAll(s, "\n", ansiReset+"\n")
		}
		result.WriteString(s)
	}

	for {
		i := strings.Index(text, sectionSign)
		codeAt := i + len(sectionSign)
		if i < 0 || codeAt >= len(text) {
			plain(text)
			return result.String()
		}

		plain(text[:i])
		code, size := utf8.DecodeRuneInString(text[codeAt:])
		if seq, ok := ansiColors[byte(code)]; ansi && ok && code < utf8.RuneSelf {
			result.WriteString(seq)
		}
		text = text[codeAt+size:]
	}
}
