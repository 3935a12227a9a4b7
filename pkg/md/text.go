package md

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"
)

// DecodeText decodes the backslash escapes and character references of text
// as it appears in Markdown source.
func DecodeText(s []byte) string {
	if len(s) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s) && util.IsPunct(s[i+1]):
			sb.WriteByte(s[i+1])
			i++
		case c == '&':
			ref := leadingCharRef(string(s[i:]))
			if r, ok := decodeCharRef(ref); ok {
				sb.WriteString(r)
				i += len(ref) - 1
			} else {
				sb.WriteByte(c)
			}
		case c == 0:
			sb.WriteRune(utf8.RuneError)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

var charRefRegexp = regexp.MustCompile(`^&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[a-zA-Z][a-zA-Z0-9]*);`)

// Returns the character reference at the start of s, or "" if there is none.
func leadingCharRef(s string) string {
	if !strings.HasPrefix(s, "&") {
		return ""
	}
	return charRefRegexp.FindString(s)
}

func decodeCharRef(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	body := ref[1 : len(ref)-1]
	if body[0] == '#' {
		var n uint64
		var err error
		if body[1] == 'x' || body[1] == 'X' {
			n, err = strconv.ParseUint(body[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(body[1:], 10, 32)
		}
		if err != nil || n == 0 || n > unicode.MaxRune {
			return string(utf8.RuneError), err == nil
		}
		return string(rune(n)), true
	}
	entity, ok := util.LookUpHTML5EntityByName(body)
	if !ok {
		return "", false
	}
	return string(entity.Characters), true
}

func isUnicodePunct(r rune) bool {
	return unicode.In(r, unicode.P, unicode.S)
}

var (
	thematicBreakRegexp = regexp.MustCompile(
		`^[ \t]*((?:-[ \t]*){3,}|(?:_[ \t]*){3,}|(?:\*[ \t]*){3,})$`)

	// Starts of HTML blocks, by kind.
	htmlBlockStarts = []*regexp.Regexp{
		regexp.MustCompile(`^ {0,3}<(?i:pre|script|style|textarea)`),
		regexp.MustCompile(`^ {0,3}<!--`),
		regexp.MustCompile(`^ {0,3}<\?`),
		regexp.MustCompile(`^ {0,3}<![a-zA-Z]`),
		regexp.MustCompile(`^ {0,3}<!\[CDATA\[`),
		regexp.MustCompile(`^ {0,3}</?(?i:address|article|aside|base|basefont|blockquote|body|caption|center|col|colgroup|dd|details|dialog|dir|div|dl|dt|fieldset|figcaption|figure|footer|form|frame|frameset|h1|h2|h3|h4|h5|h6|head|header|hr|html|iframe|legend|li|link|main|menu|menuitem|nav|noframes|ol|optgroup|option|p|param|section|source|summary|table|tbody|td|tfoot|th|thead|title|tr|track|ul)(?:[ \t>]|$|/>)`),
	}
	htmlBlockStart7 = regexp.MustCompile(
		fmt.Sprintf(`^ {0,3}(?:%s|%s)[ \t]*$`, openTag, closingTag))
)

const (
	openTag = `<` +
		`[a-zA-Z][a-zA-Z0-9-]*` + // tag name
		(`(?:` +
			`[ \t\n]+` + // whitespace
			`[a-zA-Z_:][a-zA-Z0-9_\.:-]*` + // attribute name
			`(?:[ \t\n]*=[ \t\n]*(?:[^ \t\n"'=<>` + "`" + `]+|'[^']*'|"[^"]*"))?` + // attribute value specification
			`)*`) + // zero or more attributes
		`[ \t\n]*` + // whitespace
		`/?>`
	closingTag = `</[a-zA-Z][a-zA-Z0-9-]*[ \t\n]*>`
)
