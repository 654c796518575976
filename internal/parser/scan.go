package parser

// scanner tracks a JSX tag or a braced expression that may span lines.
type scanner struct {
	tag    bool // tag mode ends at '>' outside braces, expression mode at the matching '}'
	braces int
	quote  byte
}

// scan consumes b and returns the index just past the end of the construct,
// or -1 when b ends before it closes.
func (s *scanner) scan(b []byte) int {
	for i := 0; i < len(b); i++ {
		c := b[i]
		if s.quote != 0 {
			// JSX attribute strings have no escapes; JS strings do
			if c == '\\' && s.braces > 0 {
				i++
				continue
			}
			if c == s.quote {
				s.quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			s.quote = c
		case '`':
			if s.braces > 0 {
				s.quote = c
			}
		case '{':
			s.braces++
		case '}':
			if s.braces > 0 {
				s.braces--
			}
			if !s.tag && s.braces == 0 {
				return i + 1
			}
		case '>':
			if s.tag && s.braces == 0 {
				return i + 1
			}
		}
	}
	return -1
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isTagStart matches "<Name", "</Name", "<>" and "</>"
func isTagStart(b []byte) bool {
	if len(b) < 2 || b[0] != '<' {
		return false
	}
	if isLetter(b[1]) || b[1] == '>' {
		return true
	}
	return b[1] == '/' && len(b) > 2 && (isLetter(b[2]) || b[2] == '>')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isLineEnd(b []byte, i int) bool {
	return i >= len(b) || b[i] == '\n' || b[i] == '\r'
}

// scanFlow checks whether line holds nothing but tags and expressions.
// s carries an unfinished construct from the previous line and is updated
// in place. ok is false when prose follows a construct on the same line.
func scanFlow(line []byte, s **scanner) (ok bool) {
	i := 0
	if *s != nil {
		n := (*s).scan(line)
		if n < 0 {
			return true
		}
		*s = nil
		i = n
	}
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if isLineEnd(line, i) {
			return true
		}
		var sc *scanner
		switch {
		case isTagStart(line[i:]):
			sc = &scanner{tag: true}
		case line[i] == '{':
			sc = &scanner{}
		default:
			return false
		}
		n := sc.scan(line[i:])
		if n < 0 {
			*s = sc
			return true
		}
		i += n
	}
}
