package sinklog

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
)

var lineEnd = []byte{'\n'}

// dumper renders values without a direct textual form
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true, // Cleaner for logs
	DisableCapacities:       true, // Less noise
	SortKeys:                true, // Consistent map output
}

// lineBuffer is a reusable scratch buffer for composing one line
type lineBuffer struct {
	buf []byte
}

var linePool = sync.Pool{
	New: func() any {
		return &lineBuffer{buf: make([]byte, 0, 256)}
	},
}

func getLineBuffer() *lineBuffer {
	lb := linePool.Get().(*lineBuffer)
	lb.buf = lb.buf[:0]
	return lb
}

func putLineBuffer(lb *lineBuffer) {
	// Large buffers are dropped so one huge line does not pin memory
	if cap(lb.buf) > 64*1024 {
		return
	}
	linePool.Put(lb)
}

// appendPrefix writes "YYYY-MM-DD HH:MM:SS.mmm <header>"
func appendPrefix(buf []byte, ts time.Time, level Level) []byte {
	buf = ts.AppendFormat(buf, timestampLayout)
	buf = append(buf, ' ')
	return append(buf, levelHeaders[level]...)
}

// appendLine writes a full line: prefix, message and line end
func appendLine(buf []byte, ts time.Time, level Level, msg string) []byte {
	buf = appendPrefix(buf, ts, level)
	buf = append(buf, msg...)
	return append(buf, lineEnd...)
}

// appendArgs joins args with single spaces
func appendArgs(buf []byte, args []any) []byte {
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = appendValue(buf, arg)
	}
	return buf
}

// appendValue converts any value to its text representation.
// Falls back to go-spew for types that are not explicitly supported.
func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int32:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint32:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Time:
		return val.AppendFormat(buf, timestampLayout)
	case time.Duration:
		return append(buf, val.String()...)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	case []byte:
		return hex.AppendEncode(buf, val)
	default:
		// Single-line form, Fdump would break the line
		return append(buf, dumper.Sprintf("%+v", val)...)
	}
}
