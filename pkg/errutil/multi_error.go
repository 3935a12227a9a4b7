// Package errutil combines errors.
package errutil

import "strings"

// Multi combines errors into one. Nil errors are dropped; if none is left,
// it returns nil, and if one is left, it returns that error unchanged.
//
// Errors returned by Multi are flattened, so that
// Multi(Multi(err1, err2), err3) is the same as Multi(err1, err2, err3). The
// combined error supports [errors.Is] and [errors.As] on each of its parts.
func Multi(errs ...error) error {
	var flat multiError
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			flat = append(flat, err...)
		default:
			flat = append(flat, err)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return flat
}

type multiError []error

func (me multiError) Error() string {
	msgs := make([]string, len(me))
	for i, err := range me {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

func (me multiError) Unwrap() []error { return me }
