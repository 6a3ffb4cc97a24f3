package sinklog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sizedMessage returns a message that makes a 61 byte INFO line
func sizedMessage(i int) string {
	return fmt.Sprintf("msg-%02d-%s", i, strings.Repeat("x", 23))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRotationNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Rotation
		want Rotation
	}{
		{"none", NoRotation(), Rotation{Policy: PolicyNone}},
		{"daily drops size fields", Rotation{Policy: PolicyDaily, MaxFiles: 3, MaxSize: 10}, Rotation{Policy: PolicyDaily}},
		{"size clamps files", SizeRotation(0, 100), Rotation{Policy: PolicySize, MaxFiles: 2, MaxSize: 100}},
		{"size keeps files", SizeRotation(4, 500), Rotation{Policy: PolicySize, MaxFiles: 4, MaxSize: 500}},
		{"size without threshold", SizeRotation(4, 0), Rotation{Policy: PolicySize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalize())
		})
	}

	assert.False(t, SizeRotation(4, 0).sizeEnabled())
	assert.True(t, SizeRotation(1, 1).sizeEnabled())
	assert.False(t, DailyRotation().sizeEnabled())
}

// TestSizeRotation verifies backups shift, keep content order and respect the cap
func TestSizeRotation(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))
	logger, _, _ := createTestLogger(t, WithClock(clock.Now))

	path := filepath.Join(t.TempDir(), "size.log")
	require.NoError(t, logger.SetLogFile(LevelInfo, path, SizeRotation(3, 100)))

	// Each line is 61 bytes, so the third write into a file finds it over 100
	for i := 1; i <= 7; i++ {
		logger.Info(sizedMessage(i))
	}

	assert.Equal(t, []string{"INFO: " + sizedMessage(7)}, fileMessages(t, path))
	assert.Equal(t, []string{"INFO: " + sizedMessage(5), "INFO: " + sizedMessage(6)}, fileMessages(t, path+".1"))
	assert.Equal(t, []string{"INFO: " + sizedMessage(3), "INFO: " + sizedMessage(4)}, fileMessages(t, path+".2"))
	assert.False(t, fileExists(path+".3"), "at most MaxFiles-1 backups are kept")

	st := logger.Stats()[LevelInfo]
	assert.Equal(t, uint64(3), st.Rotations)
	assert.Zero(t, st.RotationErrors)
}

// TestSizeRotationTwoFiles verifies the smallest retention keeps exactly one backup
func TestSizeRotationTwoFiles(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	path := filepath.Join(t.TempDir(), "two.log")
	require.NoError(t, logger.SetLogFile(LevelInfo, path, SizeRotation(1, 100)))

	for i := 1; i <= 5; i++ {
		logger.Info(sizedMessage(i))
	}

	assert.Equal(t, []string{"INFO: " + sizedMessage(5)}, fileMessages(t, path))
	assert.Equal(t, []string{"INFO: " + sizedMessage(3), "INFO: " + sizedMessage(4)}, fileMessages(t, path+".1"))
	assert.False(t, fileExists(path+".2"))
}

// TestSizeRotationSharedSink verifies aliased levels rotate one file set
func TestSizeRotationSharedSink(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	path := filepath.Join(t.TempDir(), "shared.log")
	require.NoError(t, logger.SetLogFile(LevelInfo, path, SizeRotation(4, 500)))
	require.NoError(t, logger.SetLogFile(LevelError, path, SizeRotation(4, 500)))

	for i := 0; i < 40; i++ {
		logger.Info("info", i, strings.Repeat("i", 40))
		logger.Error("error", i, strings.Repeat("e", 40))
	}

	var total int
	for _, name := range []string{path, path + ".1", path + ".2", path + ".3"} {
		require.True(t, fileExists(name), "missing %s", name)
		info, err := os.Stat(name)
		require.NoError(t, err)
		// Threshold plus the line that crossed it
		assert.LessOrEqual(t, info.Size(), int64(500+100))
		total += len(fileMessages(t, name))
	}
	assert.False(t, fileExists(path+".4"))
	assert.Greater(t, total, 0)

	stats := logger.Stats()
	assert.Equal(t, stats[LevelInfo].Rotations, stats[LevelError].Rotations)
}

// TestSizeRotationExistingFile verifies a pre-existing oversized file rotates on first write
func TestSizeRotationExistingFile(t *testing.T) {
	logger, _, _ := createTestLogger(t)

	path := filepath.Join(t.TempDir(), "existing.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("old\n", 50)), 0644))
	require.NoError(t, logger.SetLogFile(LevelInfo, path, SizeRotation(3, 100)))

	logger.Info("new")

	assert.Equal(t, []string{"INFO: new"}, fileMessages(t, path))
	data, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("old\n", 50), string(data))
}

// TestSizeRotationFallback verifies writes go to stderr while the file cannot be reopened
func TestSizeRotationFallback(t *testing.T) {
	logger, _, stderr := createTestLogger(t)

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.Mkdir(dir, 0755))
	path := filepath.Join(dir, "fallback.log")
	require.NoError(t, logger.SetLogFile(LevelInfo, path, SizeRotation(2, 100)))

	logger.Info(sizedMessage(1))
	logger.Info(sizedMessage(2))

	// Rename and reopen both fail without the directory
	require.NoError(t, os.RemoveAll(dir))
	logger.Info(sizedMessage(3))

	assert.Equal(t, []string{"INFO: " + sizedMessage(3)}, messages(t, stderr.String()))
	st := logger.Stats()[LevelInfo]
	assert.GreaterOrEqual(t, st.RotationErrors, uint64(2))
	assert.Zero(t, st.Rotations)

	// Recovery on the next write once the file can be opened again
	require.NoError(t, os.Mkdir(dir, 0755))
	logger.Info(sizedMessage(4))

	assert.Equal(t, []string{"INFO: " + sizedMessage(4)}, fileMessages(t, path))
	assert.Len(t, messages(t, stderr.String()), 1)
}

// TestDailyRotation verifies the active file is archived under its reference date
func TestDailyRotation(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))
	logger, _, _ := createTestLogger(t, WithClock(clock.Now))

	path := filepath.Join(t.TempDir(), "daily.log")
	require.NoError(t, logger.SetLogFile(LevelDebug, path, DailyRotation()))
	s := logger.registry.Load().sink(LevelDebug)

	logger.Debug("day one")

	// Same day, nothing happens
	wait := s.checkDaily()
	assert.Equal(t, 12*time.Hour, wait)
	assert.False(t, fileExists(path+".20260310"))

	clock.Set(time.Date(2026, 3, 11, 0, 0, 1, 0, time.Local))
	wait = s.checkDaily()

	assert.Equal(t, []string{"DEBUG: day one"}, fileMessages(t, path+".20260310"))
	assert.Empty(t, fileMessages(t, path))
	assert.Equal(t, "20260311", s.refDate)
	assert.Equal(t, 24*time.Hour-time.Second, wait)

	logger.Debug("day two")
	assert.Equal(t, []string{"DEBUG: day two"}, fileMessages(t, path))

	st := logger.Stats()[LevelDebug]
	assert.Equal(t, uint64(1), st.Rotations)
	assert.Equal(t, PolicyDaily, st.Policy)
}

// TestDailyRotationEmptyFile verifies an empty file only advances the reference date
func TestDailyRotationEmptyFile(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 23, 0, 0, 0, time.Local))
	logger, _, _ := createTestLogger(t, WithClock(clock.Now))

	path := filepath.Join(t.TempDir(), "quiet.log")
	require.NoError(t, logger.SetLogFile(LevelInfo, path, DailyRotation()))
	s := logger.registry.Load().sink(LevelInfo)

	clock.Set(time.Date(2026, 3, 12, 6, 0, 0, 0, time.Local))
	wait := s.checkDaily()

	assert.False(t, fileExists(path+".20260310"))
	assert.Equal(t, "20260312", s.refDate)
	assert.Equal(t, 18*time.Hour, wait)
	assert.Zero(t, logger.Stats()[LevelInfo].Rotations)
}

// TestDailyRotationRenameFailure verifies a blocked archive keeps the old date
// and is retried after the next midnight instead of immediately
func TestDailyRotationRenameFailure(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local))
	logger, _, _ := createTestLogger(t, WithClock(clock.Now))

	path := filepath.Join(t.TempDir(), "blocked.log")
	require.NoError(t, logger.SetLogFile(LevelInfo, path, DailyRotation()))
	s := logger.registry.Load().sink(LevelInfo)

	logger.Info("day one")

	// A non-empty directory at the archive name makes the rename fail
	archive := path + ".20260310"
	require.NoError(t, os.MkdirAll(filepath.Join(archive, "x"), 0755))

	clock.Set(time.Date(2026, 3, 11, 0, 0, 1, 0, time.Local))
	wait := s.checkDaily()

	assert.Equal(t, 24*time.Hour-time.Second, wait)
	assert.NotEqual(t, minWaitTime, wait)
	assert.Equal(t, "20260310", s.refDate)
	assert.GreaterOrEqual(t, logger.Stats()[LevelInfo].RotationErrors, uint64(1))
	assert.Zero(t, logger.Stats()[LevelInfo].Rotations)

	// A later check on the same day still waits for the next midnight
	clock.Set(time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local))
	assert.Equal(t, 15*time.Hour, s.checkDaily())

	// The active file stays usable
	logger.Info("day two")
	assert.Equal(t, []string{"INFO: day one", "INFO: day two"}, fileMessages(t, path))

	// Next cycle succeeds once the blocker is gone, keeping the old date
	require.NoError(t, os.RemoveAll(archive))
	clock.Set(time.Date(2026, 3, 12, 0, 0, 1, 0, time.Local))
	wait = s.checkDaily()

	assert.Equal(t, 24*time.Hour-time.Second, wait)
	assert.Equal(t, []string{"INFO: day one", "INFO: day two"}, fileMessages(t, archive))
	assert.Equal(t, "20260312", s.refDate)
	assert.Equal(t, uint64(1), logger.Stats()[LevelInfo].Rotations)
}

// TestDailyRotationExistingFile verifies a file left over from an earlier day
// is archived when the rotation goroutine starts
func TestDailyRotationExistingFile(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local))
	logger, _, _ := createTestLogger(t, WithClock(clock.Now))

	path := filepath.Join(t.TempDir(), "old.log")
	require.NoError(t, os.WriteFile(path, []byte("yesterday\n"), 0644))
	yesterday := time.Date(2026, 3, 9, 18, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, yesterday, yesterday))

	require.NoError(t, logger.SetLogFile(LevelError, path, DailyRotation()))

	require.Eventually(t, func() bool {
		return fileExists(path + ".20260309")
	}, 2*time.Second, 10*time.Millisecond)

	// Once archived, the next write goes to the fresh active file
	logger.Error("today")
	data, err := os.ReadFile(path + ".20260309")
	require.NoError(t, err)
	assert.Equal(t, "yesterday\n", string(data))
	assert.Equal(t, []string{"*** ERROR! today"}, fileMessages(t, path))
}

// TestDailyRotationStopsOnShutdown verifies the rotation goroutine exits
func TestDailyRotationStopsOnShutdown(t *testing.T) {
	logger := NewLogger(WithStdout(&strings.Builder{}), WithStderr(&strings.Builder{}))

	path := filepath.Join(t.TempDir(), "stop.log")
	require.NoError(t, logger.SetLogFileAll(path, DailyRotation()))
	s := logger.registry.Load().sink(LevelInfo)

	require.NoError(t, logger.Shutdown())

	select {
	case <-s.dailyDone:
	default:
		t.Fatal("daily rotation goroutine still running after shutdown")
	}
}

func TestUntilNextDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		refDate string
		want    time.Duration
	}{
		{"same day", "20260310", 5*time.Hour + 30*time.Minute},
		{"stale date clamps", "20260301", minWaitTime},
		{"unparsable date uses now", "garbage", 5*time.Hour + 30*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, untilNextDay(tt.refDate, now))
		})
	}
}

func TestBackupPath(t *testing.T) {
	assert.Equal(t, "app.log.1", backupPath("app.log", "1"))
	assert.Equal(t, "/var/log/app.log.20260310", backupPath("/var/log/app.log", "20260310"))
}
