package main

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/broady/routegen"
)

//go:embed VERSION
var releaseFile string

// buildVersion describes the running binary.
type buildVersion struct {
	Release   string // contents of VERSION
	Module    string // set when installed with go install
	Revision  string // short VCS revision of a development build
	Modified  bool   // working tree had local changes
	GoVersion string
}

func readBuildVersion() buildVersion {
	v := buildVersion{
		Release:   strings.TrimSpace(releaseFile),
		GoVersion: runtime.Version(),
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		v.Module = mv
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Revision = s.Value[:min(len(s.Value), 7)]
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}
	return v
}

// String reports the module version for installed builds and
// "devel-<release>[+<revision>[.dirty]]" otherwise.
func (v buildVersion) String() string {
	if v.Module != "" {
		return v.Module
	}
	s := "devel-" + v.Release
	if v.Revision != "" {
		s += "+" + v.Revision
		if v.Modified {
			s += ".dirty"
		}
	}
	return s
}

// Version returns the version string of the running binary.
func Version() string {
	return readBuildVersion().String()
}

type VersionCmd struct {
	Verbose bool `help:"Also print the Go version and the available targets." short:"v"`

	stdout io.Writer
}

func (c *VersionCmd) Run() error {
	w := c.stdout
	if w == nil {
		w = os.Stdout
	}
	v := readBuildVersion()
	if !c.Verbose {
		_, err := fmt.Fprintln(w, v)
		return err
	}
	_, err := fmt.Fprintf(w, "routegen %s\ngo:       %s\ntargets:  %s\n",
		v, v.GoVersion, strings.Join(routegen.Targets(), ", "))
	return err
}
