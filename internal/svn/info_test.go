package svn

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

const sampleInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<info>
<entry kind="file" path="src/main.c" revision="42">
<url>https://svn.example.com/repo/trunk/src/main.c</url>
<relative-url>^/trunk/src/main.c</relative-url>
<repository>
<root>https://svn.example.com/repo</root>
<uuid>5f3c2a10-0000-4000-8000-000000000001</uuid>
</repository>
<wc-info>
<wcroot-abspath>/home/dev/repo</wcroot-abspath>
<schedule>normal</schedule>
<depth>infinity</depth>
</wc-info>
<commit revision="40">
<author>bob</author>
<date>2024-05-06T07:08:09.123456Z</date>
</commit>
</entry>
</info>
`

const sampleLogXML = `<?xml version="1.0" encoding="UTF-8"?>
<log>
<logentry revision="41">
<author>alice</author>
<date>2024-05-05T12:00:00.000000Z</date>
<paths>
<path prop-mods="false" text-mods="true" kind="file" action="M">/trunk/src/main.c</path>
<path kind="file" action="A">/trunk/README</path>
</paths>
<msg>Fix overflow in parser
</msg>
</logentry>
<logentry revision="7">
<author>bob</author>
<date>2023-01-01T00:00:00.000000Z</date>
<msg>Initial import</msg>
</logentry>
</log>
`

func TestParseInfo(t *testing.T) {
	info, err := ParseInfo(sampleInfoXML)
	require.NoError(t, err)

	assert.Equal(t, "src/main.c", info.Path)
	assert.Equal(t, "file", info.Kind)
	assert.Equal(t, int64(42), info.Revision)
	assert.Equal(t, "https://svn.example.com/repo/trunk/src/main.c", info.URL)
	assert.Equal(t, "^/trunk/src/main.c", info.RelativeURL)
	assert.Equal(t, "https://svn.example.com/repo", info.RepositoryRoot)
	assert.Equal(t, "5f3c2a10-0000-4000-8000-000000000001", info.RepositoryUUID)
	assert.Equal(t, "/home/dev/repo", info.WorkingCopyRoot)
	assert.Equal(t, "normal", info.Schedule)
	assert.Equal(t, int64(40), info.LastChangedRev)
	assert.Equal(t, "bob", info.LastChangedAuthor)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.UTC), info.LastChangedDate)
}

func TestParseInfo_Errors(t *testing.T) {
	_, err := ParseInfo("not xml at all")
	require.ErrorIs(t, err, bridgeerrors.ErrProcess)

	_, err = ParseInfo(`<?xml version="1.0"?><info></info>`)
	require.ErrorIs(t, err, bridgeerrors.ErrProcess)
}

func TestParseLog(t *testing.T) {
	entries, err := ParseLog(sampleLogXML)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, int64(41), first.Revision)
	assert.Equal(t, "alice", first.Author)
	assert.Equal(t, "Fix overflow in parser", first.Message)
	assert.Equal(t, 2024, first.Date.Year())
	wantPaths := []ChangedPath{
		{Action: "M", Kind: "file", Path: "/trunk/src/main.c"},
		{Action: "A", Kind: "file", Path: "/trunk/README"},
	}
	if diff := cmp.Diff(wantPaths, first.Paths); diff != "" {
		t.Errorf("changed paths mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, int64(7), entries[1].Revision)
	assert.Empty(t, entries[1].Paths)
}

func TestParseLog_Empty(t *testing.T) {
	entries, err := ParseLog(`<?xml version="1.0"?><log></log>`)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = ParseLog("<log><logentry")
	require.ErrorIs(t, err, bridgeerrors.ErrProcess)
}

func TestParseSVNDate(t *testing.T) {
	assert.True(t, parseSVNDate("").IsZero())
	assert.True(t, parseSVNDate("yesterday").IsZero())
	assert.Equal(t, 2020, parseSVNDate("2020-02-03T04:05:06.000000Z").Year())
}
