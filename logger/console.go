package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const ansiReset = "\033[0m"

var levelBadges = map[string][2]string{
	"trace": {"TRC", "\033[90m"},
	"debug": {"DBG", "\033[36m"},
	"info":  {"INF", "\033[32m"},
	"warn":  {"WRN", "\033[33m"},
	"error": {"ERR", "\033[31m"},
	"fatal": {"FTL", "\033[35m"},
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			lvl := strings.ToLower(fmt.Sprint(i))
			badge, ok := levelBadges[lvl]
			switch {
			case !ok:
				return "[" + strings.ToUpper(lvl) + "]"
			case noColor:
				return "[" + badge[0] + "]"
			}
			return badge[1] + "[" + badge[0] + "]" + ansiReset
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprint(i) + ":" },
	}
}
