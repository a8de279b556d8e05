package svn

import (
	"encoding/xml"
	"fmt"
	"strings"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

type xmlLogDoc struct {
	XMLName xml.Name      `xml:"log"`
	Entries []xmlLogEntry `xml:"logentry"`
}

type xmlLogEntry struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
	Msg      string `xml:"msg"`
	Paths    []struct {
		Action string `xml:"action,attr"`
		Kind   string `xml:"kind,attr"`
		Path   string `xml:",chardata"`
	} `xml:"paths>path"`
}

// ParseLog parses `svn log --xml` output, newest revision first as svn emits it.
func ParseLog(raw string) ([]LogEntry, error) {
	var doc xmlLogDoc
	if err := xml.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse svn log output: %w: %w", bridgeerrors.ErrProcess, err)
	}

	entries := make([]LogEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		entry := LogEntry{
			Revision: e.Revision,
			Author:   e.Author,
			Date:     parseSVNDate(e.Date),
			Message:  strings.TrimRight(e.Msg, "\n"),
		}
		for _, p := range e.Paths {
			entry.Paths = append(entry.Paths, ChangedPath{
				Action: p.Action,
				Kind:   p.Kind,
				Path:   strings.TrimSpace(p.Path),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
