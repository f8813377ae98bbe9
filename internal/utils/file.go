package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// thermalSuffix matches DJI radiometric capture names such as
// DJI_20240612093045_0001_T.JPG. Only the _T frames carry radiometric data;
// the sibling wide-angle captures do not.
const thermalSuffix = "_t"

// captureTimePattern matches the YYYYMMDDHHMMSS block DJI embeds in frame
// filenames.
var captureTimePattern = regexp.MustCompile(`(\d{8})(\d{6})`)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsThermalFrame checks if a filename looks like a radiometric capture
func IsThermalFrame(filename string) bool {
	ext := GetFileExtension(filename)
	if ext != "jpg" && ext != "jpeg" {
		return false
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return strings.HasSuffix(strings.ToLower(base), thermalSuffix)
}

// ListFrameFiles lists the radiometric frames in a directory, sorted by name
// so batch runs are processed in capture order.
func ListFrameFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsThermalFrame(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// OutputName generates a deterministic output filename from an input frame
// name, a mode suffix, and a target format.
func OutputName(inputFile, outputDir, suffix, format string) string {
	baseName := filepath.Base(inputFile)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", nameWithoutExt, suffix, format))
}

// ParseCaptureTime extracts the capture timestamp DJI embeds in frame
// filenames. The second return is false when the name carries no timestamp.
func ParseCaptureTime(filename string) (time.Time, bool) {
	match := captureTimePattern.FindStringSubmatch(filepath.Base(filename))
	if match == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("20060102150405", match[1]+match[2], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return info.IsDir()
}
