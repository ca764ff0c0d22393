package main

import (
	"fmt"
	"os/exec"
	"runtime/debug"
	"strings"
	"time"
)

// set with -ldflags "-X main.commit=... -X main.buildDate=..."
var (
	commit    = "dev"
	buildDate = ""
)

func init() {
	commit, buildDate = resolveVersion(commit, buildDate)
}

// resolveVersion fills whatever the linker left unset from the embedded VCS
// stamp, then from the working tree, then from the clock.
func resolveVersion(rev, date string) (string, string) {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && rev == "dev" && s.Value != "":
				rev = shortRev(s.Value)
			case s.Key == "vcs.time" && date == "" && s.Value != "":
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					date = t.Format("2006-01-02")
				}
			}
		}
	}
	if rev == "dev" {
		if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
			rev = strings.TrimSpace(string(out))
		}
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return rev, date
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func versionString() string {
	return fmt.Sprintf("%s (%s)", commit, buildDate)
}
