package logger

import (
	"fmt"
	"strings"
)

// ANSI color codes for console output.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func printTagged(color, level, tag, msg string) {
	fmt.Printf("%s%-7s%s %s[%s]%s %s\n", color, level, reset, bold, tag, reset, msg)
}

// Info logs an informational message with a component tag.
func Info(tag, msg string) {
	printTagged(cyan, "INFO", tag, msg)
}

// Success logs a success message with a component tag.
func Success(tag, msg string) {
	printTagged(green, "OK", tag, msg)
}

// Warn logs a warning message with a component tag.
func Warn(tag, msg string) {
	printTagged(yellow, "WARN", tag, msg)
}

// Error logs an error message with a component tag.
func Error(tag, msg string) {
	printTagged(red, "ERROR", tag, msg)
}

// Section prints a section header for grouped output.
func Section(title string) {
	fmt.Printf("\n%s%s── %s %s%s\n", bold, cyan, title, strings.Repeat("─", max(0, 40-len(title))), reset)
}

// Stats prints a key/value statistic line under a Section.
func Stats(key string, value int) {
	fmt.Printf("  %s%-16s%s %d\n", dim, key, reset, value)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%sstarmap%s %suniverse map service (%s)%s\n", bold, cyan, reset, dim, version, reset)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("%s%sLISTEN%s  http://%s\n", bold, green, reset, addr)
}
