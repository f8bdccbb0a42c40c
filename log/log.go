// Copyright 2014 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package log implements the project's leveled, structured logger. It is a
// small, self-contained analogue of go-probeum's own log package: a
// Logger carries a chain of key/value context, records are dispatched to
// a Handler, and the default handler renders to the terminal with colored
// level tags when stderr is a TTY.
package log

import (
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is a log level, ordered from most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Record is a single log event handed to a Handler.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
}

// Logger writes leveled, structured log records.
type Logger interface {
	New(ctx ...interface{}) Logger
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx     []interface{}
	handler Handler
}

// Root returns the default logger, writing to stderr with a terminal
// format that auto-detects color support.
func Root() Logger { return root }

var root = &logger{handler: defaultHandler()}

func defaultHandler() Handler {
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	out := colorable.NewColorableStderr()
	return StreamHandler(out, TerminalFormat(useColor))
}

// SetHandler replaces the root logger's handler, e.g. to redirect logs or
// to raise/lower verbosity.
func SetHandler(h Handler) { root.handler = h }

func (l *logger) New(ctx ...interface{}) Logger {
	nctx := make([]interface{}, 0, len(l.ctx)+len(ctx))
	nctx = append(nctx, l.ctx...)
	nctx = append(nctx, ctx...)
	return &logger{ctx: nctx, handler: l.handler}
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	full := make([]interface{}, 0, len(l.ctx)+len(ctx))
	full = append(full, l.ctx...)
	full = append(full, ctx...)
	_ = l.handler.Log(&Record{Time: time.Now(), Lvl: lvl, Msg: msg, Ctx: full})
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }

// Crit logs at the critical level and terminates the process. Callers
// that need to panic with diagnostic context instead (internal
// consistency failures in package wormhole) log through Crit's sibling,
// CritStack, which logs without exiting.
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(LvlCrit, msg, ctx)
	os.Exit(1)
}

// Package-level convenience wrappers over Root().
func New(ctx ...interface{}) Logger           { return root.New(ctx...) }
func Trace(msg string, ctx ...interface{})    { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{})    { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})     { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})     { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{})    { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})     { root.Crit(msg, ctx...) }

// CritStack logs at the critical level but, unlike Crit, does not call
// os.Exit: it is used for internal assertions that the caller will turn
// into a panic immediately afterwards, so the process still unwinds with
// a Go stack trace rather than terminating inside the logger.
func CritStack(msg string, ctx ...interface{}) { root.write(LvlCrit, msg, ctx) }
