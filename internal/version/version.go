package version

import (
	"os/exec"
	"runtime/debug"
	"strings"
	"time"
)

// Commit and BuildDate may be set with -ldflags; otherwise they are read from
// the embedded build info, then from git.
var (
	Commit    = "dev"
	BuildDate = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if Commit == "dev" && s.Value != "" {
					Commit = short(s.Value)
				}
			case "vcs.time":
				if BuildDate == "" && s.Value != "" {
					if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
						BuildDate = t.Format("2006-01-02")
					}
				}
			}
		}
	}
	if Commit == "dev" {
		if c, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
			Commit = short(strings.TrimSpace(string(c)))
		}
	}
	if BuildDate == "" {
		BuildDate = time.Now().Format("2006-01-02")
	}
}

func short(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String formats the build as "commit (date)".
func String() string {
	return Commit + " (" + BuildDate + ")"
}
