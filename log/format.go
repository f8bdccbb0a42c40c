package log

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Format renders a Record to bytes for a Handler to write out.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

var levelColor = map[Lvl]color.Attribute{
	LvlCrit:  color.FgMagenta,
	LvlError: color.FgRed,
	LvlWarn:  color.FgYellow,
	LvlInfo:  color.FgGreen,
	LvlDebug: color.FgCyan,
	LvlTrace: color.FgWhite,
}

// TerminalFormat renders a human-oriented line: a timestamp, a
// (optionally colored) level tag, the message, and logfmt-style
// key=value context pairs.
func TerminalFormat(useColor bool) Format {
	return formatFunc(func(r *Record) []byte {
		var buf bytes.Buffer
		lvl := r.Lvl.String()
		if useColor {
			lvl = color.New(levelColor[r.Lvl]).Sprintf("%-5s", lvl)
		} else {
			lvl = fmt.Sprintf("%-5s", lvl)
		}
		fmt.Fprintf(&buf, "%s[%s] %s", r.Time.Format("15:04:05.000"), lvl, r.Msg)
		writeCtx(&buf, r.Ctx)
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

// LogfmtFormat renders records as plain logfmt, with no color codes, for
// non-terminal destinations (files, pipes).
func LogfmtFormat() Format {
	return formatFunc(func(r *Record) []byte {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "t=%s lvl=%s msg=%s", r.Time.Format(time3339), strings.ToLower(r.Lvl.String()), logfmtQuote(r.Msg))
		writeCtx(&buf, r.Ctx)
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

const time3339 = "2006-01-02T15:04:05.000Z0700"

func writeCtx(buf *bytes.Buffer, ctx []interface{}) {
	for i := 0; i+1 < len(ctx); i += 2 {
		key, _ := ctx[i].(string)
		fmt.Fprintf(buf, " %s=%s", key, logfmtQuote(fmt.Sprint(ctx[i+1])))
	}
	if len(ctx)%2 == 1 {
		fmt.Fprintf(buf, " %s=%s", "EXTRA", logfmtQuote(fmt.Sprint(ctx[len(ctx)-1])))
	}
}

func logfmtQuote(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\"=") {
		return s
	}
	return fmt.Sprintf("%q", s)
}
