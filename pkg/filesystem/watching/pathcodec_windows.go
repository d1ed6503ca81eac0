//go:build windows

package watching

import (
	"strings"
	"unicode/utf16"
)

// longPathThreshold is the code-unit length above which a path must be
// transformed into its \\?\ long-path form before being handed to Win32.
// The system this was modeled on uses 240 here even though MAX_PATH is 260;
// that discrepancy is preserved verbatim (see DESIGN.md) rather than
// "fixed", since changing it would silently alter which paths get rewritten
// for existing consumers.
const longPathThreshold = 240

const (
	longPathPrefix    = `\\?\`
	longPathUNCPrefix = `\\?\UNC\`
)

// NormalizeWatchPath computes the registry key for a caller-supplied path,
// applying Windows long-path normalization exactly once.
func NormalizeWatchPath(path string) WatchedPath {
	return WatchedPath(normalizeLongPath(path))
}

// DenormalizeWatchPath inverts NormalizeWatchPath exactly once, for use when
// reporting a path back to the caller via Callback.
func DenormalizeWatchPath(path WatchedPath) string {
	return denormalizeLongPath(string(path))
}

// codeUnitLen returns the length of path in UTF-16 code units, which is the
// unit Win32 path-length limits are expressed in.
func codeUnitLen(path string) int {
	return len(utf16.Encode([]rune(path)))
}

// isDriveAbsolute reports whether path has the form "X:\..." for a drive
// letter X.
func isDriveAbsolute(path string) bool {
	return len(path) >= 3 &&
		((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) &&
		path[1] == ':' &&
		path[2] == '\\'
}

// normalizeLongPath rewrites a path over the code-unit threshold into its
// \\?\ or \\?\UNC\ form so Win32 APIs will accept it unmodified.
func normalizeLongPath(path string) string {
	if codeUnitLen(path) <= longPathThreshold || strings.HasPrefix(path, longPathPrefix) {
		return path
	}
	if isDriveAbsolute(path) {
		return longPathPrefix + path
	}
	if strings.HasPrefix(path, `\\`) {
		return longPathUNCPrefix + path[2:]
	}
	return path
}

// denormalizeLongPath inverts normalizeLongPath for reporting.
func denormalizeLongPath(path string) string {
	if strings.HasPrefix(path, longPathUNCPrefix) {
		return `\\` + path[len(longPathUNCPrefix):]
	}
	if strings.HasPrefix(path, longPathPrefix) {
		return path[len(longPathPrefix):]
	}
	return path
}
