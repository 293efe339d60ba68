package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/accounts/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	infoTxtColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnTxtColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorTxtColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugTxtColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
)

func levelStyle(icon string, color lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(icon).
		Bold(true).
		Padding(0, 1).
		Foreground(color)
}

func loggerStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = levelStyle("ERR", errorTxtColor)
	styles.Levels[log.InfoLevel] = levelStyle("INF", infoTxtColor)
	styles.Levels[log.WarnLevel] = levelStyle("WRN", warnTxtColor)
	styles.Levels[log.DebugLevel] = levelStyle("DBG", debugTxtColor)

	keyColors := map[string]lipgloss.AdaptiveColor{
		"error":     errorTxtColor,
		"number":    infoTxtColor,
		"source":    infoTxtColor,
		"dest":      infoTxtColor,
		"amount":    warnTxtColor,
		"operation": debugTxtColor,
		"prefix":    debugTxtColor,
		"caller":    debugTxtColor,
		"time":      debugTxtColor,
	}
	for key, color := range keyColors {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return styles
}

func setupLogger(cfg *config.Log) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text"}
	}
	formattersMap := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"text":   log.TextFormatter,
		"logfmt": log.LogfmtFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formattersMap[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(loggerStyles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)

	return slogger
}
