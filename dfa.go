package lexi

import (
	"github.com/teleivo/lexi/token"
)

// state is a state of the DFA. The zero value is the dead state which has no transitions.
type state uint8

const (
	stateDead state = iota
	stateStart

	// numbers
	stateSign      // + or -
	stateInt       // digits, accepting
	stateDot       // digits followed by '.'
	stateFrac      // digits '.' digits, accepting
	stateExp       // 'e' or 'E' after the integer or fractional part
	stateExpSign   // exponent marker followed by + or -
	stateExpDigits // digits of the exponent, accepting

	// strings
	stateString    // inside the string body
	stateEscape    // after '\'
	stateUnicode1  // after '\u'
	stateUnicode2  // after '\u' and one hex digit
	stateUnicode3  // after '\u' and two hex digits
	stateUnicode4  // after '\u' and three hex digits
	stateStringEnd // closing '"', accepting

	// identifiers
	stateIdentHead // a single uppercase letter, accepting
	stateIdentTail // uppercase letter followed by [a-z0-9_]+, accepting

	// boolean literals
	stateT
	stateTr
	stateTru
	stateTrue // accepting
	stateF
	stateFa
	stateFal
	stateFals
	stateFalse // accepting

	numStates
)

// class is a character class. Letters the DFA transitions on individually have their own class.
type class uint8

const (
	classOther class = iota
	classDigit
	classSign       // + -
	classDot        // .
	classQuote      // "
	classBackslash  // \
	classUnderscore // _
	classA          // a
	classE          // e
	classF          // f
	classL          // l
	classN          // n
	classR          // r
	classS          // s
	classT          // t
	classU          // u
	classLowerHex   // b c d
	classLower      // remaining lowercase letters
	classUpperE     // E
	classUpperHex   // A B C D F
	classUpper      // remaining uppercase letters

	numClasses
)

var (
	classes     [128]class
	transitions [numStates][numClasses]state
	accepts     [numStates]token.Kind
)

var (
	digitClasses = []class{classDigit}
	lowerClasses = []class{classA, classE, classF, classL, classN, classR, classS, classT, classU, classLowerHex, classLower}
	upperClasses = []class{classUpperE, classUpperHex, classUpper}
	hexClasses   = []class{classDigit, classA, classE, classF, classLowerHex, classUpperE, classUpperHex}
	expClasses   = []class{classE, classUpperE}
)

func init() {
	for i := range 128 {
		ch := byte(i)
		switch {
		case '0' <= ch && ch <= '9':
			classes[i] = classDigit
		case 'b' <= ch && ch <= 'd':
			classes[i] = classLowerHex
		case 'a' <= ch && ch <= 'z':
			classes[i] = classLower
		case ch == 'E':
			classes[i] = classUpperE
		case 'A' <= ch && ch <= 'F':
			classes[i] = classUpperHex
		case 'A' <= ch && ch <= 'Z':
			classes[i] = classUpper
		}
	}
	classes['+'] = classSign
	classes['-'] = classSign
	classes['.'] = classDot
	classes['"'] = classQuote
	classes['\\'] = classBackslash
	classes['_'] = classUnderscore
	classes['a'] = classA
	classes['e'] = classE
	classes['f'] = classF
	classes['l'] = classL
	classes['n'] = classN
	classes['r'] = classR
	classes['s'] = classS
	classes['t'] = classT
	classes['u'] = classU

	// numbers
	on(stateStart, stateInt, digitClasses...)
	on(stateStart, stateSign, classSign)
	on(stateSign, stateInt, digitClasses...)
	on(stateInt, stateInt, digitClasses...)
	on(stateInt, stateDot, classDot)
	on(stateInt, stateExp, expClasses...)
	on(stateDot, stateFrac, digitClasses...)
	on(stateFrac, stateFrac, digitClasses...)
	on(stateFrac, stateExp, expClasses...)
	on(stateExp, stateExpSign, classSign)
	on(stateExp, stateExpDigits, digitClasses...)
	on(stateExpSign, stateExpDigits, digitClasses...)
	on(stateExpDigits, stateExpDigits, digitClasses...)

	// strings may span lines so the body transitions on every class
	on(stateStart, stateString, classQuote)
	for c := range numClasses {
		transitions[stateString][c] = stateString
	}
	on(stateString, stateStringEnd, classQuote)
	on(stateString, stateEscape, classBackslash)
	on(stateEscape, stateString, classQuote, classBackslash, classN, classT, classR)
	on(stateEscape, stateUnicode1, classU)
	on(stateUnicode1, stateUnicode2, hexClasses...)
	on(stateUnicode2, stateUnicode3, hexClasses...)
	on(stateUnicode3, stateUnicode4, hexClasses...)
	on(stateUnicode4, stateString, hexClasses...)

	// identifiers have no transition on an uppercase letter after the first one
	on(stateStart, stateIdentHead, upperClasses...)
	for _, from := range []state{stateIdentHead, stateIdentTail} {
		on(from, stateIdentTail, lowerClasses...)
		on(from, stateIdentTail, digitClasses...)
		on(from, stateIdentTail, classUnderscore)
	}

	// boolean literals
	on(stateStart, stateT, classT)
	on(stateT, stateTr, classR)
	on(stateTr, stateTru, classU)
	on(stateTru, stateTrue, classE)
	on(stateStart, stateF, classF)
	on(stateF, stateFa, classA)
	on(stateFa, stateFal, classL)
	on(stateFal, stateFals, classS)
	on(stateFals, stateFalse, classE)

	accepts[stateInt] = token.IntegerLiteral
	accepts[stateFrac] = token.FloatLiteral
	accepts[stateExpDigits] = token.FloatLiteral
	accepts[stateStringEnd] = token.StringLiteral
	accepts[stateIdentHead] = token.Identifier
	accepts[stateIdentTail] = token.Identifier
	accepts[stateTrue] = token.BooleanLiteral
	accepts[stateFalse] = token.BooleanLiteral
}

// on adds transitions from state from to state to on given classes.
func on(from, to state, cs ...class) {
	for _, c := range cs {
		transitions[from][c] = to
	}
}

// classOf returns the class of rune r. Runes outside of ASCII are all of [classOther].
func classOf(r rune) class {
	if r < 0 || r >= 128 {
		return classOther
	}
	return classes[r]
}

// isAccepting reports whether a complete token can end in state s.
func (s state) isAccepting() bool {
	return accepts[s] != token.ERROR
}

// kind returns the kind of token accepted in state s or [token.ERROR] if s is not accepting.
func (s state) kind() token.Kind {
	return accepts[s]
}

// inString reports whether s is a state inside a string literal before its closing quote.
func (s state) inString() bool {
	switch s {
	case stateString, stateEscape, stateUnicode1, stateUnicode2, stateUnicode3, stateUnicode4:
		return true
	}
	return false
}

// inEscape reports whether s is a state inside an escape sequence of a string literal.
func (s state) inEscape() bool {
	switch s {
	case stateEscape, stateUnicode1, stateUnicode2, stateUnicode3, stateUnicode4:
		return true
	}
	return false
}

// match is the outcome of a DFA run.
type match struct {
	// accepted is the last accepting state reached or stateDead if none was reached.
	accepted state
	// last is the state the DFA was in when it stopped.
	last state
}

// run runs the DFA from the cursors position using maximal munch. On success the cursor is placed
// right after the longest accepted lexeme. If no accepting state is reached the cursor is left
// where the DFA stopped so the consumed prefix can be reported.
func run(c *cursor) match {
	cur := stateStart
	accepted, acceptedAt := stateDead, *c

	for !c.atEOF() {
		next := transitions[cur][classOf(c.peek())]
		if next == stateDead {
			break
		}
		cur = next
		c.advance()

		if cur.isAccepting() {
			accepted, acceptedAt = cur, *c
		}
	}

	if accepted != stateDead {
		*c = acceptedAt
	}
	return match{accepted: accepted, last: cur}
}
