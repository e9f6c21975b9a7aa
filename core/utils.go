package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the calendar date format used throughout the Ledger.
// Dates are plain strings compared lexicographically; no timezone math.
const DateLayout = "2006-01-02"

// Today returns the current calendar date from the server wall clock in UTC.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// DaysAgo returns the calendar date n days before today, in UTC.
func DaysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format(DateLayout)
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd tries to find the project root.
// go-test changes the working directory to the test package being run during tests;
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
