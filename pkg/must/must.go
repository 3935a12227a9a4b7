// Package must wraps functions that return errors into ones that panic
// instead. It is meant for test fixtures, where a failure to set up means the
// test cannot run at all.
package must

import (
	"io"
	"os"
	"path/filepath"
)

// OK panics if err is not nil.
func OK(err error) {
	if err != nil {
		panic(err)
	}
}

// OK1 returns v, panicking if err is not nil.
func OK1[T any](v T, err error) T {
	OK(err)
	return v
}

// Pipe wraps os.Pipe.
func Pipe() (r, w *os.File) {
	return OK2(os.Pipe())
}

// OK2 is like OK1 for functions that return two values and an error.
func OK2[T, U any](v T, w U, err error) (T, U) {
	OK(err)
	return v, w
}

// Chdir wraps os.Chdir and returns the previous working directory.
func Chdir(dir string) (previous string) {
	previous = OK1(os.Getwd())
	OK(os.Chdir(dir))
	return previous
}

// ReadString reads r until EOF and closes it.
func ReadString(r io.ReadCloser) string {
	b := OK1(io.ReadAll(r))
	OK(r.Close())
	return string(b)
}

// ReadFileString wraps os.ReadFile.
func ReadFileString(name string) string {
	return string(OK1(os.ReadFile(name)))
}

// WriteFile writes a Markdown fixture with permission 0644, creating the
// directories leading to it.
func WriteFile(name, content string) {
	OK(os.MkdirAll(filepath.Dir(name), 0755))
	OK(os.WriteFile(name, []byte(content), 0644))
}
