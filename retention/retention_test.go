// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package retention

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeeper(t *testing.T) *Keeper {
	t.Helper()
	dir := t.TempDir()
	k, err := New(Config{RecordsDir: dir, RetentionDays: 90})
	require.NoError(t, err)
	return k
}

func TestNew_CreatesRecordsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "records")
	_, err := New(Config{RecordsDir: dir, RetentionDays: 90})
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRecordProcessing_AppendsLineAndUpdatesStats(t *testing.T) {
	k := newTestKeeper(t)
	k.RecordProcessing("redact", "pdf", []string{"email"}, 0.125, 1, 3, true)

	stats := k.GetRecordStats()
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 1, stats.RecordsByType["redact"])
	assert.NotEqual(t, "N/A", stats.LastRecordTime)

	files, err := os.ReadDir(k.cfg.RecordsDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), recordFilePrefix)
}

func TestRecordProcessing_ConcurrentWritesDoNotRace(t *testing.T) {
	k := newTestKeeper(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			k.RecordProcessing("detect", "pdf", nil, 0.01, 1, 0, true)
		}(i)
	}
	wg.Wait()
	stats := k.GetRecordStats()
	assert.Equal(t, 20, stats.TotalRecords)
}

func TestComputeOperationID_Is16HexChars(t *testing.T) {
	id := computeOperationID(time.Now(), "redact", "pdf")
	assert.Len(t, id, 16)
}

func TestCleanupOldRecords_RemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	oldName := filepath.Join(dir, recordFilePrefix+"2000-01-01"+recordFileSuffix)
	require.NoError(t, os.WriteFile(oldName, []byte(`{"operation_id":"a"}`+"\n"), 0o644))

	k, err := New(Config{RecordsDir: dir, RetentionDays: 90})
	require.NoError(t, err)

	_, statErr := os.Stat(oldName)
	assert.True(t, os.IsNotExist(statErr))
	stats := k.GetRecordStats()
	assert.Equal(t, 0, stats.RecordsByDay["2000-01-01"])
}

func TestGetRecordStats_ReturnsIndependentCopies(t *testing.T) {
	k := newTestKeeper(t)
	k.RecordProcessing("extract", "pdf", nil, 0.01, 1, 0, true)

	stats := k.GetRecordStats()
	stats.RecordsByType["extract"] = 999

	fresh := k.GetRecordStats()
	assert.Equal(t, 1, fresh.RecordsByType["extract"])
}
