//go:build !windows

package watching

// NormalizeWatchPath computes the registry key for a caller-supplied path.
// On POSIX platforms there is no long-path transformation, so the path is
// used unchanged.
func NormalizeWatchPath(path string) WatchedPath {
	return WatchedPath(path)
}

// DenormalizeWatchPath inverts NormalizeWatchPath for reporting purposes. On
// POSIX platforms this is the identity function.
func DenormalizeWatchPath(path WatchedPath) string {
	return string(path)
}
