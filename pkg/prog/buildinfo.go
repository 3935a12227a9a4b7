package prog

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
)

// Version is the version of the program. It is read from the build
// information when available.
var Version = "unknown"

func init() {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		Version = info.Main.Version
	}
}

// VersionProgram is a Program that shows the version when -version is given,
// and the Go version too with -json.
type VersionProgram struct {
	version bool
	json    *bool
}

func (p *VersionProgram) RegisterFlags(fs *FlagSet) {
	fs.BoolVar(&p.version, "version", false, "show version and quit")
	p.json = fs.JSON()
}

func (p *VersionProgram) Run(fds [3]*os.File, _ []string) error {
	if !p.version {
		return ErrNextProgram
	}
	if *p.json {
		fmt.Fprintf(fds[1], `{"version":%q,"goversion":%q}`+"\n",
			Version, runtime.Version())
	} else {
		fmt.Fprintln(fds[1], Version)
	}
	return nil
}
