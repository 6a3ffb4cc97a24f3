package sinklog

import (
	"context"
	"os"
	"strconv"
	"time"
)

// Rotation describes how a file sink is rotated
type Rotation struct {
	Policy   Policy
	MaxFiles int   // Active file plus numbered backups, size policy only
	MaxSize  int64 // Bytes, 0 disables size rotation
}

// NoRotation never rotates the file
func NoRotation() Rotation {
	return Rotation{Policy: PolicyNone}
}

// SizeRotation rotates once the file exceeds maxSize bytes, keeping at most
// maxFiles-1 numbered backups. maxFiles is raised to 2 when maxSize is set.
func SizeRotation(maxFiles int, maxSize int64) Rotation {
	return Rotation{Policy: PolicySize, MaxFiles: maxFiles, MaxSize: maxSize}.normalize()
}

// DailyRotation rotates the file at the first check after local midnight
func DailyRotation() Rotation {
	return Rotation{Policy: PolicyDaily}
}

// normalize clamps values instead of rejecting them
func (r Rotation) normalize() Rotation {
	if r.Policy != PolicySize || r.MaxSize <= 0 {
		return Rotation{Policy: r.Policy}
	}
	if r.MaxFiles < minSizeRotationFiles {
		r.MaxFiles = minSizeRotationFiles
	}
	return r
}

// sizeEnabled reports whether writes must check the size threshold
func (r Rotation) sizeEnabled() bool {
	return r.Policy == PolicySize && r.MaxSize > 0
}

// backupPath returns the name of a numbered or dated backup
func backupPath(path, suffix string) string {
	return path + "." + suffix
}

// rotateBySizeLocked rotates when the file already exceeds the threshold.
// The write that triggered the check goes to the fresh file.
func (s *Sink) rotateBySizeLocked() {
	info, err := s.file.Stat()
	if err != nil {
		s.rotationErrors.Add(1)
		s.env.internalLog("failed to stat log file '%s' for rotation: %v\n", s.path, err)
		return
	}
	if info.Size() <= s.rotation.MaxSize {
		return
	}

	if err := s.file.Close(); err != nil {
		s.env.internalLog("failed to close log file '%s' before rotation: %v\n", s.path, err)
		// Continue with rotation anyway
	}
	s.file = nil

	// Shift path.i to path.(i+1), the highest index is overwritten
	for i := s.rotation.MaxFiles - 2; i > 0; i-- {
		src := backupPath(s.path, strconv.Itoa(i))
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, backupPath(s.path, strconv.Itoa(i+1))); err != nil {
			s.env.internalLog("failed to shift log backup '%s': %v\n", src, err)
		}
	}

	renameErr := os.Rename(s.path, backupPath(s.path, "1"))
	if renameErr != nil {
		s.rotationErrors.Add(1)
		s.env.internalLog("failed to rotate log file '%s', continuing with current file: %v\n", s.path, renameErr)
	}

	if !s.reopenLocked() || renameErr != nil {
		return
	}
	s.refDate = dateOf(s.env.now())
	s.rotations.Add(1)
}

// runDailyRotation checks the day boundary, then sleeps until the midnight
// following the reference date. Exits when ctx is cancelled.
func (s *Sink) runDailyRotation(ctx context.Context) {
	defer close(s.dailyDone)

	for {
		wait := s.checkDaily()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// checkDaily rotates the file when its reference date is not today and
// returns the wait until the next check. A failed rotation keeps refDate, so
// the archive still carries the old date, and is retried after next midnight.
func (s *Sink) checkDaily() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.env.now()
	today := dateOf(now)
	if s.closed {
		return untilNextDay(today, now)
	}
	if s.file == nil {
		s.reopenLocked()
	}

	if s.refDate != today && s.file != nil {
		info, err := s.file.Stat()
		switch {
		case err != nil:
			s.rotationErrors.Add(1)
			s.env.internalLog("failed to stat log file '%s' for daily rotation: %v\n", s.path, err)
		case info.Size() == 0:
			// Nothing to archive, the file now holds today's content
			s.refDate = today
		default:
			s.rotateDailyLocked(today)
		}
	}

	return untilNextDay(today, now)
}

// rotateDailyLocked archives the active file as path.<refDate>
func (s *Sink) rotateDailyLocked(today string) {
	if err := s.file.Sync(); err != nil {
		s.env.internalLog("failed to sync log file '%s' before rotation: %v\n", s.path, err)
	}
	if err := s.file.Close(); err != nil {
		s.env.internalLog("failed to close log file '%s' before rotation: %v\n", s.path, err)
	}
	s.file = nil

	archive := backupPath(s.path, s.refDate)
	renameErr := os.Rename(s.path, archive)
	if renameErr != nil {
		s.rotationErrors.Add(1)
		s.env.internalLog("failed to rename log file '%s' to '%s', retrying next cycle: %v\n", s.path, archive, renameErr)
	}

	if !s.reopenLocked() || renameErr != nil {
		return
	}
	s.refDate = today
	s.rotations.Add(1)
}

// reopenLocked opens path again after rotation. On failure the sink writes to
// the fallback writer until a later write succeeds in reopening.
func (s *Sink) reopenLocked() bool {
	file, err := openLogFile(s.path)
	if err != nil {
		s.rotationErrors.Add(1)
		s.env.internalLog("failed to reopen log file, writing to fallback: %v\n", err)
		s.file = nil
		s.w = s.env.fallback
		return false
	}
	s.file = file
	s.w = file
	return true
}

// dateOf formats the local calendar day of t
func dateOf(t time.Time) string {
	return t.In(time.Local).Format(dateLayout)
}

// untilNextDay returns the time from now to the local midnight after refDate
func untilNextDay(refDate string, now time.Time) time.Duration {
	ref, err := time.ParseInLocation(dateLayout, refDate, time.Local)
	if err != nil {
		ref = now
	}
	y, m, d := ref.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, time.Local)

	wait := midnight.Sub(now)
	if wait < minWaitTime {
		wait = minWaitTime
	}
	return wait
}
