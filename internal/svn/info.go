package svn

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

type xmlInfoDoc struct {
	XMLName xml.Name       `xml:"info"`
	Entries []xmlInfoEntry `xml:"entry"`
}

type xmlInfoEntry struct {
	Kind        string `xml:"kind,attr"`
	Path        string `xml:"path,attr"`
	Revision    int64  `xml:"revision,attr"`
	URL         string `xml:"url"`
	RelativeURL string `xml:"relative-url"`
	Repository  struct {
		Root string `xml:"root"`
		UUID string `xml:"uuid"`
	} `xml:"repository"`
	WCInfo struct {
		RootPath string `xml:"wcroot-abspath"`
		Schedule string `xml:"schedule"`
	} `xml:"wc-info"`
	Commit xmlCommit `xml:"commit"`
}

type xmlCommit struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
}

// ParseInfo parses `svn info --xml` output. Only the first entry is returned
// because callers query a single target.
func ParseInfo(raw string) (*Info, error) {
	var doc xmlInfoDoc
	if err := xml.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse svn info output: %w: %w", bridgeerrors.ErrProcess, err)
	}
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("svn info returned no entries: %w", bridgeerrors.ErrProcess)
	}

	e := doc.Entries[0]
	return &Info{
		Path:              e.Path,
		Kind:              e.Kind,
		Revision:          e.Revision,
		URL:               e.URL,
		RelativeURL:       e.RelativeURL,
		RepositoryRoot:    e.Repository.Root,
		RepositoryUUID:    e.Repository.UUID,
		WorkingCopyRoot:   e.WCInfo.RootPath,
		Schedule:          e.WCInfo.Schedule,
		LastChangedRev:    e.Commit.Revision,
		LastChangedAuthor: e.Commit.Author,
		LastChangedDate:   parseSVNDate(e.Commit.Date),
	}, nil
}

// parseSVNDate parses svn's RFC 3339 timestamps; a bad date yields the zero time.
func parseSVNDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
