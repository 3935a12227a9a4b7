package diag

import (
	"fmt"
	"io"
)

// Shower is implemented by errors that can show themselves with a source
// excerpt.
type Shower interface {
	// Show returns a multi-line description. Lines after the first are
	// prefixed with indent.
	Show(indent string) string
}

// ShowError writes err to w, using its Show method if it is a Shower and
// Complain otherwise.
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

// Complain writes msg to w in bold red, followed by a newline.
func Complain(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s%s%s\n", messageStart, msg, messageEnd)
}
