// Package privacy scrubs user-identifying details from telemetry messages.
// Audio and settings file paths are replaced by a hashed form that keeps the
// path depth and the file extension.
package privacy

import (
	"crypto/sha256"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// pathPattern finds absolute Unix or Windows paths that start a message or
// follow whitespace, a quote, a parenthesis or an equals sign.
var pathPattern = regexp.MustCompile(`(^|[\s"'(=])((?:/|[A-Za-z]:\\)[^\s"'(),:;]+)`)

// ScrubMessage anonymizes every absolute path in message.
func ScrubMessage(message string) string {
	return pathPattern.ReplaceAllStringFunc(message, func(m string) string {
		sub := pathPattern.FindStringSubmatch(m)
		return sub[1] + AnonymizePath(sub[2])
	})
}

// AnonymizePath hashes every segment of p. The extension of the last segment
// is kept so errors remain attributable to a format.
func AnonymizePath(p string) string {
	sep := "/"
	if strings.Contains(p, `\`) {
		sep = `\`
	}
	trimmed := strings.Trim(p, sep)
	if trimmed == "" {
		return "root"
	}

	segments := strings.Split(trimmed, sep)
	out := make([]string, 0, len(segments))
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		ext := ""
		if i == len(segments)-1 {
			ext = path.Ext(seg)
		}
		out = append(out, hashSegment(strings.TrimSuffix(seg, ext))+ext)
	}
	return "/" + strings.Join(out, "/")
}

func hashSegment(s string) string {
	hash := sha256.Sum256([]byte(s))
	return fmt.Sprintf("seg-%x", hash[:4])
}
