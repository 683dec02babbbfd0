package launcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	urlPattern  = regexp.MustCompile(`https?://[^\s]+`)
)

// localMarker is the label dev servers such as Vite print before the URL.
const localMarker = "Local:"

// ExtractLocalURL returns the URL from a dev-server line containing "Local:".
// Color codes are stripped first.
func ExtractLocalURL(line string) (string, bool) {
	clean := ansiPattern.ReplaceAllString(line, "")
	idx := strings.Index(clean, localMarker)
	if idx < 0 {
		return "", false
	}
	match := urlPattern.FindString(clean[idx+len(localMarker):])
	if match == "" {
		return "", false
	}
	return strings.TrimRight(match, ".,;)"), true
}

// maxOutputLine bounds a single line of child output. Longer lines stop line
// scanning; the rest of the stream is then copied through unparsed.
const maxOutputLine = 1024 * 1024

// ForwardOutput copies r to out line by line, calls onLine for each line and
// calls found once with the first local URL announced. It reads r to the end
// even after an overlong line, so the child never blocks on a full pipe.
func ForwardOutput(r io.Reader, out io.Writer, onLine func(string), found func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
	reported := false
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(out, line)
		if onLine != nil {
			onLine(line)
		}
		if reported {
			continue
		}
		if url, ok := ExtractLocalURL(line); ok {
			reported = true
			if found != nil {
				found(url)
			}
		}
	}
	err := scanner.Err()
	if err == nil {
		return nil
	}
	if _, copyErr := io.Copy(out, r); copyErr != nil {
		return errors.Join(err, copyErr)
	}
	return err
}
