// Package earlyfmt adapts the teacher's allocation-free console formatter
// (kernel/kfmt/early/early_fmt.go) to this loader's domain: there is no
// hal.ActiveTerminal, only a firmware.Console, and by the point any boot-
// orchestrator code runs the Go heap is available (SPEC_FULL.md §0), so the
// verb scanner below builds its output with strconv/strings.Builder rather
// than gopher-os's hand-rolled digit loop. The reduced verb set and the
// single left-to-right scan are kept, because the teacher's choice of verbs
// (%s, %d, %o, %x, %t, with an optional width prefix) is exactly what a
// boot trace needs and nothing more.
package earlyfmt

import (
	"strconv"
	"strings"

	"github.com/MercurOS/maia/internal/firmware"
)

const (
	missingArg = "(MISSING)"
	noVerb     = "%!(NOVERB)"
	wrongType  = "%!(WRONGTYPE)"
	extraArg   = "%!(EXTRA)"
)

// Printf writes a formatted line to console. Supported verbs: %s (string or
// []byte), %d (base 10), %o (base 8), %x (base 16), %t (bool). A decimal
// number immediately before the verb sets a minimum width; strings and
// base-10 integers are left-padded with spaces, base-8/16 integers with
// zeroes — matching the teacher's padding rules exactly.
func Printf(console firmware.Console, format string, args ...interface{}) {
	var out strings.Builder
	argIndex := 0

	i, n := 0, len(format)
	for i < n {
		if format[i] != '%' {
			out.WriteByte(format[i])
			i++
			continue
		}

		j := i + 1
		width := 0
		for j < n && format[j] >= '0' && format[j] <= '9' {
			width = width*10 + int(format[j]-'0')
			j++
		}

		if j >= n {
			out.WriteString(noVerb)
			i = j
			break
		}

		verb := format[j]
		if verb == '%' {
			out.WriteByte('%')
			i = j + 1
			continue
		}

		switch verb {
		case 's', 'd', 'o', 'x', 't':
			if argIndex >= len(args) {
				out.WriteString(missingArg)
				i = j + 1
				continue
			}
			writeVerb(&out, verb, width, args[argIndex])
			argIndex++
			i = j + 1
		default:
			out.WriteString(noVerb)
			i = j + 1
		}
	}

	for ; argIndex < len(args); argIndex++ {
		out.WriteString(extraArg)
	}

	console.WriteString(out.String())
}

func writeVerb(out *strings.Builder, verb byte, width int, arg interface{}) {
	switch verb {
	case 's':
		writeString(out, width, arg)
	case 't':
		writeBool(out, arg)
	default:
		writeInt(out, verb, width, arg)
	}
}

func writeString(out *strings.Builder, width int, arg interface{}) {
	var s string
	switch v := arg.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		out.WriteString(wrongType)
		return
	}
	for pad := width - len(s); pad > 0; pad-- {
		out.WriteByte(' ')
	}
	out.WriteString(s)
}

func writeBool(out *strings.Builder, arg interface{}) {
	v, ok := arg.(bool)
	if !ok {
		out.WriteString(wrongType)
		return
	}
	if v {
		out.WriteString("true")
	} else {
		out.WriteString("false")
	}
}

func writeInt(out *strings.Builder, verb byte, width int, arg interface{}) {
	u, s, signed, ok := widenInt(arg)
	if !ok {
		out.WriteString(wrongType)
		return
	}

	var base int
	var padCh byte
	switch verb {
	case 'o':
		base, padCh = 8, '0'
	case 'x':
		base, padCh = 16, '0'
	default:
		base, padCh = 10, ' '
	}

	var digits string
	if signed && s < 0 {
		digits = "-" + strconv.FormatUint(uint64(-s), base)
	} else if signed {
		digits = strconv.FormatUint(uint64(s), base)
	} else {
		digits = strconv.FormatUint(u, base)
	}

	if verb == 'x' {
		digits = "0x" + digits
	}

	for pad := width - len(digits); pad > 0; pad-- {
		out.WriteByte(padCh)
	}
	out.WriteString(digits)
}

func widenInt(arg interface{}) (u uint64, s int64, signed, ok bool) {
	switch v := arg.(type) {
	case uint8:
		return uint64(v), 0, false, true
	case uint16:
		return uint64(v), 0, false, true
	case uint32:
		return uint64(v), 0, false, true
	case uint64:
		return v, 0, false, true
	case uintptr:
		return uint64(v), 0, false, true
	case int8:
		return 0, int64(v), true, true
	case int16:
		return 0, int64(v), true, true
	case int32:
		return 0, int64(v), true, true
	case int64:
		return 0, v, true, true
	case int:
		return 0, int64(v), true, true
	default:
		return 0, 0, false, false
	}
}
