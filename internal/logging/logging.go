/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logging is the leveled internal logger shared by the transport
// and adapter layers. The socket helper core (pkg/sock) stays silent and
// reports through error returns only.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// Logger writes colored, level-filtered lines with the caller location.
type Logger struct {
	name      string
	out       io.Writer
	callDepth int
}

var (
	std   = &Logger{"", os.Stdout, 3}
	level int

	magenta = string([]byte{27, 91, 57, 53, 109}) // Trace
	green   = string([]byte{27, 91, 57, 50, 109}) // Debug
	blue    = string([]byte{27, 91, 57, 52, 109}) // Info
	yellow  = string([]byte{27, 91, 57, 51, 109}) // Warn
	red     = string([]byte{27, 91, 57, 49, 109}) // Error
	reset   = string([]byte{27, 91, 48, 109})

	colors = []string{
		magenta,
		green,
		blue,
		yellow,
		red,
	}

	levelName = []string{
		"Trace",
		"Debug",
		"Info",
		"Warn",
		"Error",
	}
)

// Log levels, lowest to highest. LevelNoPrint silences the logger.
const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNoPrint
)

func init() {
	level = LevelWarn
	if os.Getenv("PLUGIN_NET_LOG_LEVEL") != "" {
		if n, err := strconv.Atoi(os.Getenv("PLUGIN_NET_LOG_LEVEL")); err == nil {
			if n <= LevelNoPrint {
				level = n
			}
		}
	}
}

// SetLevel changes the logger level; the default is Warn. The process env
// `PLUGIN_NET_LOG_LEVEL` also sets it.
func SetLevel(l int) {
	if l <= LevelNoPrint {
		level = l
	}
}

// Default returns the shared logger.
func Default() *Logger {
	return std
}

// New returns a named logger writing to out (os.Stdout when nil).
func New(name string, out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		name:      name,
		out:       out,
		callDepth: 3,
	}
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	if level > LevelError {
		return
	}
	fmt.Fprintf(l.out, l.prefix(LevelError)+format+reset+"\n", a...)
}

func (l *Logger) Warnf(format string, a ...interface{}) {
	if level > LevelWarn {
		return
	}
	fmt.Fprintf(l.out, l.prefix(LevelWarn)+format+reset+"\n", a...)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	if level > LevelInfo {
		return
	}
	fmt.Fprintf(l.out, l.prefix(LevelInfo)+format+reset+"\n", a...)
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	if level > LevelDebug {
		return
	}
	fmt.Fprintf(l.out, l.prefix(LevelDebug)+format+reset+"\n", a...)
}

func (l *Logger) Tracef(format string, a ...interface{}) {
	if level > LevelTrace {
		return
	}
	fmt.Fprintf(l.out, l.prefix(LevelTrace)+format+reset+"\n", a...)
}

func (l *Logger) prefix(level int) string {
	var buffer [64]byte
	buf := bytes.NewBuffer(buffer[:0])
	_, _ = buf.WriteString(colors[level])
	_, _ = buf.WriteString(levelName[level])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.name)
	_ = buf.WriteByte(' ')
	return buf.String()
}

func (l *Logger) location() string {
	_, file, line, ok := runtime.Caller(l.callDepth)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	return file + ":" + strconv.Itoa(line)
}
