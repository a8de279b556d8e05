// Package svn provides Subversion client operations for svnbridge.
// This file implements status output parsing.
package svn

import (
	"encoding/xml"
	"html"
	"regexp"
	"strings"
)

// itemStatuses maps the `item` keyword of a wc-status record to a FileStatus.
//
//nolint:gochecknoglobals // Immutable lookup table
var itemStatuses = map[string]FileStatus{
	"normal":      StatusUnmodified,
	"none":        StatusUnmodified,
	"modified":    StatusModified,
	"added":       StatusAdded,
	"deleted":     StatusDeleted,
	"replaced":    StatusReplaced,
	"conflicted":  StatusConflicted,
	"unversioned": StatusUntracked,
	"missing":     StatusMissing,
	"ignored":     StatusIgnored,
	"obstructed":  StatusTypeChanged,
	"external":    StatusUnknown,
	"incomplete":  StatusUnknown,
	"merged":      StatusModified,
}

// letterStatuses maps the conventional one-letter codes of plain output.
//
//nolint:gochecknoglobals // Immutable lookup table
var letterStatuses = map[byte]FileStatus{
	' ': StatusUnmodified,
	'M': StatusModified,
	'A': StatusAdded,
	'D': StatusDeleted,
	'R': StatusReplaced,
	'C': StatusConflicted,
	'?': StatusUntracked,
	'!': StatusMissing,
	'I': StatusIgnored,
	'~': StatusTypeChanged,
}

// itemAttrPattern extracts the item keyword from a wc-status fragment that
// the XML decoder rejected.
var itemAttrPattern = regexp.MustCompile(`<wc-status[^>]*\bitem\s*=\s*["']([a-z-]+)["']`)

// propsAttrPattern extracts the props keyword the same way.
var propsAttrPattern = regexp.MustCompile(`<wc-status[^>]*\bprops\s*=\s*["']([a-z-]+)["']`)

// entryPathPattern and targetPathPattern locate paths in a malformed document.
var (
	entryPathPattern  = regexp.MustCompile(`<entry[^>]*\bpath\s*=\s*["']([^"']*)["']`)
	targetPathPattern = regexp.MustCompile(`<target[^>]*\bpath\s*=\s*["']([^"']*)["']`)
)

type xmlStatusDoc struct {
	XMLName xml.Name         `xml:"status"`
	Targets []xmlStatusGroup `xml:"target"`
	Lists   []xmlStatusGroup `xml:"changelist"`
}

type xmlStatusGroup struct {
	Path    string           `xml:"path,attr"`
	Entries []xmlStatusEntry `xml:"entry"`
}

type xmlStatusEntry struct {
	Path     string      `xml:"path,attr"`
	WCStatus xmlWCStatus `xml:"wc-status"`
}

type xmlWCStatus struct {
	Item  string `xml:"item,attr"`
	Props string `xml:"props,attr"`
}

// ParseStatus converts the raw output of a single-path status query into a
// FileStatus. It never fails: unrecognized input maps to StatusUnknown.
func ParseStatus(raw string) FileStatus {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StatusUnmodified
	}

	if looksLikeXML(trimmed) {
		return parseXMLStatus(trimmed)
	}

	// Lines such as "Summary of conflicts" never start with a code letter,
	// so only the first line matters for a single path.
	if status, ok := letterStatuses[trimmed[0]]; ok {
		return status
	}
	return StatusUnknown
}

// ParseStatusEntries converts multi-path status output (plain or XML) into
// entries in output order. Paths with no local change are omitted by svn.
func ParseStatusEntries(raw string) []StatusEntry {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if looksLikeXML(trimmed) {
		return parseXMLEntries(trimmed)
	}
	return parsePlainEntries(raw)
}

func looksLikeXML(s string) bool {
	return strings.HasPrefix(s, "<?xml") || strings.HasPrefix(s, "<status")
}

func parseXMLStatus(s string) FileStatus {
	var doc xmlStatusDoc
	if err := xml.Unmarshal([]byte(s), &doc); err != nil {
		return statusFromPattern(s)
	}

	entries := collectXMLEntries(&doc)
	if len(entries) == 0 {
		// svn omits unchanged paths entirely
		return StatusUnmodified
	}
	return statusFromWC(entries[0].WCStatus.Item, entries[0].WCStatus.Props)
}

func parseXMLEntries(s string) []StatusEntry {
	var doc xmlStatusDoc
	if err := xml.Unmarshal([]byte(s), &doc); err != nil {
		return entriesFromPattern(s)
	}
	entries := collectXMLEntries(&doc)
	out := make([]StatusEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusEntry{
			Path:   e.Path,
			Status: statusFromWC(e.WCStatus.Item, e.WCStatus.Props),
		})
	}
	return out
}

func collectXMLEntries(doc *xmlStatusDoc) []xmlStatusEntry {
	var entries []xmlStatusEntry
	for _, t := range doc.Targets {
		entries = append(entries, t.Entries...)
	}
	for _, l := range doc.Lists {
		entries = append(entries, l.Entries...)
	}
	return entries
}

// statusFromWC maps an item keyword, promoting property-only changes.
func statusFromWC(item, props string) FileStatus {
	status, ok := itemStatuses[item]
	if !ok {
		return StatusUnknown
	}
	if status == StatusUnmodified {
		switch props {
		case "modified":
			return StatusModified
		case "conflicted":
			return StatusConflicted
		}
	}
	return status
}

func statusFromPattern(s string) FileStatus {
	m := itemAttrPattern.FindStringSubmatch(s)
	if m == nil {
		return StatusUnknown
	}
	props := ""
	if pm := propsAttrPattern.FindStringSubmatch(s); pm != nil {
		props = pm[1]
	}
	return statusFromWC(m[1], props)
}

// entriesFromPattern recovers entries from a document the decoder rejected.
// When not even an entry can be found, the target is reported as unknown
// rather than as unchanged.
func entriesFromPattern(s string) []StatusEntry {
	locs := entryPathPattern.FindAllStringSubmatchIndex(s, -1)
	out := make([]StatusEntry, 0, len(locs))
	for i, loc := range locs {
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, StatusEntry{
			Path:   html.UnescapeString(s[loc[2]:loc[3]]),
			Status: statusFromPattern(s[loc[0]:end]),
		})
	}
	if len(out) == 0 {
		path := "."
		if m := targetPathPattern.FindStringSubmatch(s); m != nil {
			path = html.UnescapeString(m[1])
		}
		out = append(out, StatusEntry{Path: path, Status: StatusUnknown})
	}
	return out
}

// plainPathColumn is where the path starts in `svn status` plain output.
const plainPathColumn = 8

func parsePlainEntries(raw string) []StatusEntry {
	var out []StatusEntry
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) <= plainPathColumn {
			continue
		}
		if strings.HasPrefix(line, "Summary of conflicts") {
			break
		}
		if strings.HasPrefix(line, "Performing status on external") ||
			strings.HasPrefix(line, "      >") {
			continue
		}

		status, ok := letterStatuses[line[0]]
		if !ok {
			status = StatusUnknown
		}
		if status == StatusUnmodified {
			// Column two carries property status
			switch line[1] {
			case 'M':
				status = StatusModified
			case 'C':
				status = StatusConflicted
			}
		}

		path := strings.TrimSpace(line[plainPathColumn:])
		if path == "" {
			continue
		}
		out = append(out, StatusEntry{Path: path, Status: status})
	}
	return out
}
