package query

import "fmt"

// Field is a semantic type of the relation and its tuple index.
type Field uint8

const (
	Class Field = iota
	Attr
	Value
)

// Fields lists the relation fields in tuple order.
var Fields = []Field{Class, Attr, Value}

func (f Field) String() string {
	switch f {
	case Class:
		return "class"
	case Attr:
		return "attr"
	case Value:
		return "value"
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// Code is the one letter tag put in front of matches for this field.
func (f Field) Code() byte {
	return "cav"[mustField(f)]
}

// Valid reports whether f is one of Class, Attr or Value.
func (f Field) Valid() bool {
	return f <= Value
}

// FieldForCode maps a match tag back to its field.
func FieldForCode(code byte) (Field, bool) {
	switch code {
	case 'c':
		return Class, true
	case 'a':
		return Attr, true
	case 'v':
		return Value, true
	}
	return 0, false
}

// mustField guards the intent table. A field outside Class..Value can only
// come from a bug in the table itself.
func mustField(f Field) Field {
	if !f.Valid() {
		panic(fmt.Sprintf("query: invalid field %d", uint8(f)))
	}
	return f
}

// Term is one search the match engine runs. Completeness counts the fields
// already fixed by the user. With Completeness 1 both fixed slots hold the
// same field and string.
type Term struct {
	Completeness   int
	String1        string
	Type1          Field
	String2        string
	Type2          Field
	IncompleteType Field
	IncompleteStr  string
}

func (t Term) String() string {
	switch t.Completeness {
	case 0:
		return fmt.Sprintf("%s~%q", t.IncompleteType, t.IncompleteStr)
	case 1:
		return fmt.Sprintf("%s=%q %s~%q", t.Type1, t.String1, t.IncompleteType, t.IncompleteStr)
	}
	return fmt.Sprintf("%s=%q %s=%q %s~%q", t.Type1, t.String1, t.Type2, t.String2, t.IncompleteType, t.IncompleteStr)
}

// Intent is the output of BuildSearch.
type Intent struct {
	Terms []Term
	// SearchString is the literal prefix being typed, used for highlighting.
	SearchString string
}

// StateKey is the classification of one term across all four sigils.
type StateKey struct {
	Class, Attr, Value, Wildcard State
}

// Strings carries the sub-term texts the table copies into Terms.
type Strings struct {
	Class, Attr, Value, Wildcard string
	// Tail is the text being completed, whichever sigil opened it.
	Tail string
}

// BuildSearch classifies tail for every sigil and decides what to complete.
func BuildSearch(tail string) Intent {
	s := ImplyWildcard(tail)

	class := Classify(SigilClass, s)
	attr := Classify(SigilAttr, s)
	value := Classify(SigilValue, s)
	star := Classify(SigilWildcard, s)
	last := ClassifyTail(s)

	key := StateKey{Class: class.State, Attr: attr.State, Value: value.State, Wildcard: star.State}
	strs := Strings{Class: class.String, Attr: attr.String, Value: value.String, Wildcard: star.String, Tail: last.String}

	intent := Intent{Terms: DecideTerms(key, strs)}

	// class > value > attr > wildcard
	switch {
	case class.State == Incomplete:
		intent.SearchString = class.String
	case value.State == Incomplete:
		intent.SearchString = value.String
	case attr.State == Incomplete:
		intent.SearchString = attr.String
	case star.State == Incomplete:
		intent.SearchString = star.String
	}
	return intent
}

// DecideTerms is the intent table. It is total: every StateKey yields a
// defined, possibly empty, list of Terms.
func DecideTerms(k StateKey, s Strings) []Term {
	b := termBuilder{tail: s.Tail}
	c, a, v, w := k.Class == Complete, k.Attr == Complete, k.Value == Complete, k.Wildcard == Complete

	switch {
	// fully specified, nothing left to complete
	case c && a && v:

	// two fields pinned
	case c && a:
		b.two(Class, s.Class, Attr, s.Attr, Value)
	case c && v:
		b.two(Class, s.Class, Value, s.Value, Attr)
	case a && v:
		b.two(Attr, s.Attr, Value, s.Value, Class)

	// one field pinned, the wildcard stands in for another
	case c && w:
		switch {
		case k.Value == Incomplete:
			b.two(Class, s.Class, Attr, s.Wildcard, Value)
		case k.Attr == Incomplete:
			b.two(Class, s.Class, Value, s.Wildcard, Attr)
		default:
			b.two(Class, s.Class, Attr, s.Wildcard, Value)
			b.two(Class, s.Class, Value, s.Wildcard, Attr)
		}
	case a && w:
		b.two(Class, s.Wildcard, Attr, s.Attr, Value)
		b.two(Attr, s.Attr, Value, s.Wildcard, Class)
	case v && w:
		b.two(Class, s.Wildcard, Value, s.Value, Attr)
		b.two(Attr, s.Wildcard, Value, s.Value, Class)

	// one field pinned
	case c:
		b.oneFixed(Class, s.Class, k, Attr, Value)
	case a:
		b.oneFixed(Attr, s.Attr, k, Class, Value)
	case v:
		b.oneFixed(Value, s.Value, k, Class, Attr)

	// only the wildcard is pinned, it may be any field but the one completed
	case w:
		switch {
		case k.Class == Incomplete:
			b.one(Value, s.Wildcard, Class)
			b.one(Attr, s.Wildcard, Class)
		case k.Attr == Incomplete:
			b.one(Value, s.Wildcard, Attr)
			b.one(Class, s.Wildcard, Attr)
		case k.Value == Incomplete:
			b.one(Class, s.Wildcard, Value)
			b.one(Attr, s.Wildcard, Value)
		default:
			b.one(Value, s.Wildcard, Class)
			b.one(Attr, s.Wildcard, Class)
			b.one(Value, s.Wildcard, Attr)
			b.one(Class, s.Wildcard, Attr)
			b.one(Attr, s.Wildcard, Value)
			b.one(Class, s.Wildcard, Value)
		}

	// nothing pinned
	case k.Class == Incomplete:
		b.free(Class)
	case k.Attr == Incomplete:
		b.free(Attr)
	case k.Value == Incomplete:
		b.free(Value)
	case k.Wildcard == Incomplete:
		b.free(Class)
		b.free(Attr)
		b.free(Value)

	// all empty
	default:
	}
	return b.terms
}

type termBuilder struct {
	tail  string
	terms []Term
}

func (b *termBuilder) two(t1 Field, s1 string, t2 Field, s2 string, incomplete Field) {
	b.terms = append(b.terms, Term{
		Completeness:   2,
		String1:        s1,
		Type1:          mustField(t1),
		String2:        s2,
		Type2:          mustField(t2),
		IncompleteType: mustField(incomplete),
		IncompleteStr:  b.tail,
	})
}

func (b *termBuilder) one(fixed Field, str string, incomplete Field) {
	b.terms = append(b.terms, Term{
		Completeness:   1,
		String1:        str,
		Type1:          mustField(fixed),
		String2:        str,
		Type2:          fixed,
		IncompleteType: mustField(incomplete),
		IncompleteStr:  b.tail,
	})
}

// oneFixed completes whichever of the two other fields has an open sigil.
// An open wildcard leaves both candidates.
func (b *termBuilder) oneFixed(fixed Field, str string, k StateKey, first, second Field) {
	switch {
	case stateOf(k, first) == Incomplete:
		b.one(fixed, str, first)
	case stateOf(k, second) == Incomplete:
		b.one(fixed, str, second)
	case k.Wildcard == Incomplete:
		b.one(fixed, str, first)
		b.one(fixed, str, second)
	}
}

func (b *termBuilder) free(incomplete Field) {
	b.terms = append(b.terms, Term{
		Completeness:   0,
		IncompleteType: mustField(incomplete),
		IncompleteStr:  b.tail,
	})
}

func stateOf(k StateKey, f Field) State {
	switch mustField(f) {
	case Class:
		return k.Class
	case Attr:
		return k.Attr
	}
	return k.Value
}
