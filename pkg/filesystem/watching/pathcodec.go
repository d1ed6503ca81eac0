package watching

// WatchedPath is the registry key: the exact path string supplied by the
// caller, with no canonicalization performed by this package. On Windows it
// is instead the long-path-normalized form of that string (see
// pathcodec_windows.go); on other platforms it is the caller's string
// unchanged.
//
// The key identity is defined as "byte-wise identity of its UTF-16 form"; in
// Go, comparing the strings directly is equivalent, since Go string
// equality is already byte-wise and any two strings that decode to the same
// UTF-16 sequence are byte-identical UTF-8 encodings of it.
type WatchedPath string
