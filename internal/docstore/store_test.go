package docstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	s, err := New(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return s
}

func TestFetchLatestBlockMissingDocument(t *testing.T) {
	s := newTestStore(t)

	content, found, err := s.FetchLatestBlock(context.Background(), "meetings")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, content)
}

func TestAppendBlockKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, b := range []string{"[chunk 1] a", "[chunk 2] b", "[chunk 3] c"} {
		require.NoError(t, s.AppendBlock(ctx, "session-1", b))
	}

	content, found, err := s.FetchLatestBlock(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, found)

	// without a session marker only the last block is returned
	assert.Equal(t, "[chunk 3] c", content)
}

func TestFetchLatestBlockSinceSessionStart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blocks := []string{
		SessionStartMarker + " old meeting",
		"old summary",
		SessionStartMarker + " standup",
		"[chunk 1] привет",
		MeetingCompleteMarker + "\n" + SummaryHeading + "\nИтоги",
	}
	for _, b := range blocks {
		require.NoError(t, s.AppendBlock(ctx, "meetings", b))
	}

	content, found, err := s.FetchLatestBlock(ctx, "meetings")
	require.NoError(t, err)
	require.True(t, found)

	assert.True(t, strings.HasPrefix(content, SessionStartMarker+" standup"))
	assert.Contains(t, content, "[chunk 1] привет")
	assert.Contains(t, content, MeetingCompleteMarker)
	assert.NotContains(t, content, "old summary")
	assert.NotContains(t, content, blockDelimiter)
}

func TestRefIsSanitized(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.AppendBlock(context.Background(), "../../etc/passwd", "x"))
	_, err = os.Stat(filepath.Join(dir, "etc_passwd.md"))
	assert.NoError(t, err)

	err = s.AppendBlock(context.Background(), "///", "x")
	assert.ErrorIs(t, err, failure.ErrData)
}

func TestAppendBlockCanceled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.AppendBlock(ctx, "meetings", "x"), context.Canceled)
}

func TestExportMinutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minutes", "standup.docx")

	err := ExportMinutes(path, Minutes{
		Title:      "Standup",
		Subtitle:   "2026-10-18 10:00",
		Summary:    "## Decisions\n- Ship **Phoenix** on Friday\n1. Update OKR\n[MEETING_COMPLETE]",
		Transcript: "[SESSION_START] Standup\n\n[chunk 1] first paragraph\nsummary\n\n[chunk 1] first paragraph\nsummary\n\n### Transcript\nsecond paragraph",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:2]) == "PK", "docx should be a zip archive")
}
