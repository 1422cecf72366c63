package playlist

import (
	"fmt"
	"regexp"
	"strings"
)

var groupTitleRe = regexp.MustCompile(`group-title="([^"]*)"`)

// GroupTitle returns the group-title attribute of an EXTINF line, or "".
func GroupTitle(extinf string) string {
	m := groupTitleRe.FindStringSubmatch(extinf)
	if len(m) > 1 {
		return m[1]
	}
	return ""
}

// SetGroupTitle returns extinf with its group-title attribute replaced, or
// inserted before the display-name comma when the line has none.
func SetGroupTitle(extinf, group string) string {
	attr := fmt.Sprintf(`group-title="%s"`, group)
	if groupTitleRe.MatchString(extinf) {
		return groupTitleRe.ReplaceAllString(extinf, attr)
	}
	i := strings.LastIndex(extinf, ",")
	if i < 0 {
		return extinf + " " + attr
	}
	return extinf[:i] + " " + attr + extinf[i:]
}

// SetDisplayName returns extinf with the text after the last comma replaced by
// name. Lines without a comma are returned unchanged.
func SetDisplayName(extinf, name string) string {
	i := strings.LastIndex(extinf, ",")
	if i < 0 {
		return extinf
	}
	return extinf[:i+1] + name
}
