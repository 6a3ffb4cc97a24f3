package sinklog

import (
	"strconv"
	"sync"
	"time"
)

// timerStack holds start times of unmatched StartTimer calls, innermost last
type timerStack struct {
	mu     sync.Mutex
	starts []time.Time
}

// push records a start time and returns the timer number (1-based depth)
func (t *timerStack) push(start time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.starts = append(t.starts, start)
	return len(t.starts)
}

// pop removes the innermost start time, ok is false on an empty stack
func (t *timerStack) pop() (start time.Time, n int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n = len(t.starts)
	if n == 0 {
		return time.Time{}, 0, false
	}
	start = t.starts[n-1]
	t.starts = t.starts[:n-1]
	return start, n, true
}

// depth returns the number of running timers
func (t *timerStack) depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.starts)
}

// startTimer pushes a timer and reports it on the profiling sink
func (l *Logger) startTimer(location string) {
	n := l.timers.push(time.Now())
	l.writeLine(LevelProfiling, "Timer #"+strconv.Itoa(n)+" STARTED at "+location)
}

// stopTimer pops the innermost timer and reports its duration in whole units
func (l *Logger) stopTimer(unit time.Duration, location string) {
	stop := time.Now()
	start, n, ok := l.timers.pop()
	if !ok {
		l.writeLine(LevelProfiling, "Timer not started!")
		return
	}

	l.writeLine(LevelProfiling, "Timer #"+strconv.Itoa(n)+" STOPPED at "+location+
		" --- DURATION = "+formatDuration(stop.Sub(start), unit))
}

// formatDuration renders d as a whole count of unit followed by the unit name
func formatDuration(d, unit time.Duration) string {
	if unit <= 0 {
		unit = time.Nanosecond
	}
	count := strconv.FormatInt(int64(d/unit), 10)

	switch unit {
	case time.Nanosecond:
		return count + " nanoseconds"
	case time.Microsecond:
		return count + " microseconds"
	case time.Millisecond:
		return count + " milliseconds"
	case time.Second:
		return count + " seconds"
	case time.Minute:
		return count + " minutes"
	case time.Hour:
		return count + " hours"
	default:
		return count + " x " + unit.String()
	}
}
