/*
 * Copyright 2025 openhrcore.
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

// Package utils provides the shared named-logger registry built on logrus.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the logger type handed out by NewLogger.
type Logger = logrus.Logger

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiCyan    = "\x1b[36m"
	ansiMagenta = "\x1b[35m"
	ansiFaint   = "\x1b[2m"
)

var (
	defaultLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
)

// ParseLogLevel maps a level name onto a logrus level, defaulting to info.
func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// RegisterLogger adds a named logger to the registry, replacing any previous
// logger registered under the same name.
func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

// SetLoggerLevel changes the level of one registered logger. It reports
// whether a logger with that name was found.
func SetLoggerLevel(name string, lvlStr string) bool {
	lvl := ParseLogLevel(lvlStr)
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(lvl)
	return true
}

// SetAllLoggersLevel changes the level of every registered logger and makes
// the level the default for loggers created afterwards.
func SetAllLoggersLevel(lvl logrus.Level) {
	loggerRegistryMu.Lock()
	defaultLevel = lvl
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
	loggerRegistryMu.Unlock()
}

// NewLogger creates (and registers) a named logger writing colorized
// single-line records to stdout.
func NewLogger(name string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(defaultLevel)
	l.SetReportCaller(true)
	l.SetFormatter(&lineFormatter{
		loggerName:      name,
		timestampFormat: "2006-01-02 15:04:05.000",
		nameWidth:       10,
	})
	RegisterLogger(name, l)
	return l
}

type lineFormatter struct {
	loggerName      string
	timestampFormat string
	nameWidth       int
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := entry.Time.Format(f.timestampFormat)
	lvl := colorLevel(padLeft(strings.ToUpper(entry.Level.String()), 7), entry.Level)
	pid := colorWrap(fmt.Sprintf("%-6d", os.Getpid()), ansiMagenta)
	name := colorWrap(padLeft(limitRunes(f.loggerName, f.nameWidth), f.nameWidth), ansiCyan)

	caller := ""
	if entry.Caller != nil {
		caller = colorWrap(fmt.Sprintf(" %s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line), ansiFaint)
	}

	msg := entry.Message
	if len(entry.Data) > 0 {
		msg += " " + formatFields(entry.Data)
	}

	line := fmt.Sprintf("%s %s %s %s%s %s %s\n", ts, lvl, pid, name, caller, colorWrap(":", ansiFaint), msg)
	return []byte(line), nil
}

func formatFields(data logrus.Fields) string {
	parts := make([]string, 0, len(data))
	for k, v := range data {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return colorWrap(s, ansiFaint)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	default:
		return colorWrap(s, ansiRed)
	}
}

func padLeft(s string, width int) string { return fmt.Sprintf("%"+strconv.Itoa(width)+"s", s) }

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// EnvDefaultString returns the environment value for key, or def when unset
// or blank.
func EnvDefaultString(key string, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the boolean environment value for key, or def when
// unset or unparsable.
func EnvDefaultBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Elapsed formats a duration the way log lines in this module print it.
func Elapsed(start time.Time) string {
	return time.Since(start).Round(time.Microsecond).String()
}
