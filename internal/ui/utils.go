package ui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/Vibencrypt/COD492/internal/sentinel"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

var stdin = bufio.NewReader(os.Stdin)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	PrintInfo(prompt)
	input, _ := stdin.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadPositiveInt reads a positive integer from stdin
func ReadPositiveInt(prompt string) (int, error) {
	input := ReadString(prompt)
	value, err := strconv.Atoi(input)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid number: %s. Please enter a positive integer", input)
	}
	return value, nil
}

// ReadFloat reads a number, returning fallback on empty input.
func ReadFloat(prompt string, fallback float64) (float64, error) {
	input := ReadString(prompt)
	if input == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

// ReadYesNo reads y/n, returning fallback on empty input.
func ReadYesNo(prompt string, fallback bool) bool {
	switch strings.ToLower(ReadString(prompt)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return fallback
	}
}

// ReadDate reads a date from stdin with validation
func ReadDate(prompt string) (time.Time, error) {
	input := ReadString(prompt)
	if input == "today" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	date, err := time.Parse(time.DateOnly, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s. Please use YYYY-MM-DD", input)
	}
	return date, nil
}

// ParseDates parses a comma separated list of YYYY-MM-DD dates.
func ParseDates(input string) ([]time.Time, error) {
	var dates []time.Time
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		date, err := time.Parse(time.DateOnly, part)
		if err != nil {
			return nil, fmt.Errorf("invalid date format: %s. Please use YYYY-MM-DD", part)
		}
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no date given")
	}
	return dates, nil
}

// ReadPolicy reads how a homogeneous scene is handled.
func ReadPolicy() (flood.DegeneratePolicy, error) {
	input := ReadString("Borrow the paired threshold when a scene has no contrast? (propagate/borrow) [borrow]: ")
	if input == "" {
		return flood.BorrowPairedThreshold, nil
	}
	return flood.ParseDegeneratePolicy(input)
}

// ReadRegion lists the available regions and reads a region and an optional feature id.
func ReadRegion() (string, string, error) {
	ListRegions()
	region := ReadString("Enter the region name: ")
	if region == "" {
		return "", "", fmt.Errorf("region name cannot be empty")
	}
	if ids, err := sentinel.ListRegionIDs(region); err == nil && len(ids) > 0 {
		PrintInfo("Available region ids: " + strings.Join(ids, ", ") + "\n")
	}
	id := ReadString("Enter the region id (empty for the whole file): ")
	return region, id, nil
}
