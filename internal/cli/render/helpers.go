package render

import (
	"github.com/fatih/color"
)

var (
	labelStyle   = color.New(color.Bold)
	nameStyle    = color.New(color.FgGreen, color.Bold)
	addressStyle = color.New(color.FgWhite)
	faintStyle   = color.New(color.Faint)
	proxyStyle   = color.New(color.FgMagenta)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
