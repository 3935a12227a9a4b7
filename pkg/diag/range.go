package diag

import "bytes"

// Ranger is implemented by values tied to a part of a Markdown source, such
// as rejected grid tables.
type Ranger interface {
	Range() Ranging
}

// Ranging is a byte range [From, To) of a source. Embedding it gives a struct
// a Range method; it is not called Range so that the method and the field do
// not clash.
type Ranging struct {
	From int
	To   int
}

// Range implements Ranger.
func (r Ranging) Range() Ranging { return r }

// Whole returns the Ranging of all of source.
func Whole[T ~string | ~[]byte](source T) Ranging {
	return Ranging{0, len(source)}
}

// Line returns the 1-based number of the line of source that r starts on.
func (r Ranging) Line(source []byte) int {
	return bytes.Count(source[:r.From], []byte{'\n'}) + 1
}
