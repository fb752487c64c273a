package sprite

import (
	"strings"
)

type scanState int

const (
	stateText scanState = iota
	stateTag
	stateQuoted
	stateSpecial // comment, CDATA section or processing instruction
)

var specialSections = []struct {
	open, close string
}{
	{"<!--", "-->"},
	{"<![CDATA[", "]]>"},
	{"<?", "?>"},
}

// CollapseWhitespace replaces every run of whitespace in markup with a single
// space and trims the result. Quoted attribute values are copied verbatim, so
// values like "1  2\n3" survive.
func CollapseWhitespace(markup string) string {
	var (
		sb      strings.Builder
		state   = stateText
		quote   byte
		closing string
		pending bool
	)
	sb.Grow(len(markup))

	flush := func() {
		if pending && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		pending = false
	}

	for i := 0; i < len(markup); i++ {
		c := markup[i]

		if state == stateQuoted {
			sb.WriteByte(c)
			if c == quote {
				state = stateTag
			}
			continue
		}

		if isSpace(c) {
			pending = true
			continue
		}
		flush()

		switch state {
		case stateText:
			if c == '<' {
				state = stateTag
				for _, s := range specialSections {
					if strings.HasPrefix(markup[i:], s.open) {
						state, closing = stateSpecial, s.close
						sb.WriteString(s.open)
						i += len(s.open) - 1
						break
					}
				}
				if state == stateSpecial {
					continue
				}
			}
		case stateTag:
			switch c {
			case '"', '\'':
				state, quote = stateQuoted, c
			case '>':
				state = stateText
			}
		case stateSpecial:
			if strings.HasPrefix(markup[i:], closing) {
				sb.WriteString(closing)
				i += len(closing) - 1
				state = stateText
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
