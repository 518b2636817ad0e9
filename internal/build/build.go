package build

import (
	"fmt"
	"time"
)

// Set with -ldflags "-X github.com/ItsNotGoodName/x-tilewm/internal/build.version=...".
var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/ItsNotGoodName/x-tilewm"
)

func init() {
	Current = newBuild(commit, date, version, repoURL)
}

func newBuild(commit, date, version, repoURL string) Build {
	parsed, _ := time.Parse(time.RFC3339, date)

	b := Build{
		Commit:    commit,
		Version:   version,
		Date:      parsed,
		RepoURL:   repoURL,
		CommitURL: repoURL + "/tree/" + commit,
	}
	if commit == "" {
		b.CommitURL = ""
	}
	return b
}

var Current Build

type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Version   string    `json:"version"`
	Date      time.Time `json:"date,omitempty"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CommitURL string    `json:"commit_url,omitempty"`
}

// String is the version line printed by the CLI.
func (b Build) String() string {
	if b.Commit == "" {
		return b.Version
	}
	return fmt.Sprintf("%s (%s)", b.Version, b.Commit)
}
