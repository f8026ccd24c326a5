// Package lexer turns one raw record of a SoR file into an ordered sequence
// of field tokens.
//
// The grammar accepted here is authoritative for the whole module:
//
//	record  = ws* (field ws*)*
//	field   = '<' ws* payload ws* '>'
//	payload = quoted | bare | empty
//	quoted  = '"' <any bytes except '"'> '"'
//	bare    = <one or more bytes excluding ' ', '\t' and '>'>
//	ws      = ' ' | '\t'
//
// A quoted payload runs to the next double quote; there is no escape
// sequence, so a quoted field cannot itself contain a double quote. Brackets
// and whitespace inside quotes carry no meaning. An empty payload denotes a
// missing value. The record delimiter ('\n', optionally preceded by '\r') is
// stripped before lexing.
//
// Tokens are zero-copy byte spans into the input record. A record that
// violates the grammar yields the tokens lexed before the violation and the
// scanner reports Malformed; lexing never fails hard, because one bad record
// must not abort a parse.
package lexer

// Token is one raw field of a record. Raw references the input slice; it is
// only valid while the underlying buffer is.
type Token struct {
	// Raw is the field payload with brackets, quotes and surrounding
	// whitespace stripped. Nil for missing fields.
	Raw []byte
	// Quoted reports whether the payload was double-quote wrapped. A quoted
	// payload is always a string value, even when it looks numeric.
	Quoted bool
	// Missing reports an empty bracket pair.
	Missing bool
}

// Scanner lexes a single record into tokens. It is a lazy, finite,
// non-restartable sequence; Reset rearms it for the next record so one
// scanner can serve a whole chunk without allocating.
type Scanner struct {
	data      []byte
	pos       int
	malformed bool
}

// NewScanner returns a scanner over one record. A trailing record delimiter
// ('\n' or '\r\n') is stripped.
func NewScanner(record []byte) *Scanner {
	s := &Scanner{}
	s.Reset(record)
	return s
}

// Reset rearms the scanner over a new record.
func (s *Scanner) Reset(record []byte) {
	s.data = trimDelimiter(record)
	s.pos = 0
	s.malformed = false
}

// Malformed reports whether lexing stopped at a grammar violation. Tokens
// returned before the violation remain valid.
func (s *Scanner) Malformed() bool {
	return s.malformed
}

// Next returns the next field token. It returns false at end of record or at
// the point of malformation; check Malformed to distinguish the two.
func (s *Scanner) Next() (Token, bool) {
	if s.malformed {
		return Token{}, false
	}

	s.skipSpace()
	if s.pos >= len(s.data) {
		return Token{}, false
	}

	if s.data[s.pos] != '<' {
		s.malformed = true
		return Token{}, false
	}
	s.pos++
	s.skipSpace()

	if s.pos < len(s.data) && s.data[s.pos] == '"' {
		return s.quoted()
	}
	return s.bare()
}

// quoted lexes a double-quote wrapped payload. s.pos is at the opening quote.
func (s *Scanner) quoted() (Token, bool) {
	start := s.pos + 1
	end := start
	for end < len(s.data) && s.data[end] != '"' {
		end++
	}
	if end >= len(s.data) {
		// unterminated quote
		s.malformed = true
		return Token{}, false
	}

	raw := s.data[start:end]
	s.pos = end + 1
	if !s.closeBracket() {
		return Token{}, false
	}
	return Token{Raw: raw, Quoted: true}, true
}

// bare lexes an unquoted payload: a run of bytes up to whitespace or the
// closing bracket. An empty run is a missing field.
func (s *Scanner) bare() (Token, bool) {
	start := s.pos
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == ' ' || c == '\t' || c == '>' {
			break
		}
		s.pos++
	}

	raw := s.data[start:s.pos]
	if !s.closeBracket() {
		return Token{}, false
	}
	if len(raw) == 0 {
		return Token{Missing: true}, true
	}
	return Token{Raw: raw}, true
}

// closeBracket consumes optional whitespace and the required '>'.
func (s *Scanner) closeBracket() bool {
	s.skipSpace()
	if s.pos >= len(s.data) || s.data[s.pos] != '>' {
		s.malformed = true
		return false
	}
	s.pos++
	return true
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.data) && (s.data[s.pos] == ' ' || s.data[s.pos] == '\t') {
		s.pos++
	}
}

// Fields lexes a whole record at once, returning its tokens and whether the
// record was well formed. Tokens preceding a malformation are returned
// either way.
func Fields(record []byte) ([]Token, bool) {
	var s Scanner
	s.Reset(record)

	var tokens []Token
	for {
		tok, ok := s.Next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens, !s.malformed
}

// trimDelimiter strips a trailing '\n' or '\r\n' from a record.
func trimDelimiter(record []byte) []byte {
	if n := len(record); n > 0 && record[n-1] == '\n' {
		record = record[:n-1]
	}
	if n := len(record); n > 0 && record[n-1] == '\r' {
		record = record[:n-1]
	}
	return record
}
