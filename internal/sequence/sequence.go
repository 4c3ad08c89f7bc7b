package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// frame numbers live between the last two dots: name.1001.exr
var framePattern = regexp.MustCompile(`\.(\d+)\.[^.]+$`)

// hashToken matches udim/frame hash runs: out.####.tif
var hashToken = regexp.MustCompile(`#+`)

// printfToken matches printf-style frame tokens: out.%04d.tif
var printfToken = regexp.MustCompile(`%0?\d*d`)

// FrameNumber extracts the frame number from a sequence member path. The
// second return is false when the path carries no frame component.
func FrameNumber(path string) (int, bool) {
	match := framePattern.FindStringSubmatch(path)
	if match == nil {
		return 0, false
	}
	frame, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return frame, true
}

// HasFrameToken reports whether a target template contains a frame
// substitution token, either a hash run (####) or a printf form (%04d).
func HasFrameToken(template string) bool {
	return hashToken.MatchString(template) || printfToken.MatchString(template)
}

// PathForFrame substitutes the frame number into a target template. Hash runs
// pad to the run length; printf tokens format as written. Templates without a
// token come back unchanged.
func PathForFrame(template string, frame int) string {
	if hashToken.MatchString(template) {
		return hashToken.ReplaceAllStringFunc(template, func(run string) string {
			return fmt.Sprintf("%0*d", len(run), frame)
		})
	}
	if token := printfToken.FindString(template); token != "" {
		return strings.Replace(template, token, fmt.Sprintf(token, frame), 1)
	}
	return template
}
