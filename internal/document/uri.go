package document

import "strings"

// CanonicalURI lowercases the scheme and, for file:// URIs, the drive
// letter on Windows-style paths, and normalizes backslash separators to
// forward slashes. Lookups accept either the raw or canonical form; the
// store always keys by canonical.
func CanonicalURI(uri string) string {
	idx := strings.Index(uri, "://")
	if idx < 0 {
		return uri
	}
	scheme := strings.ToLower(uri[:idx])
	rest := uri[idx+3:]
	rest = strings.ReplaceAll(rest, "\\", "/")

	// file:///C:/foo -> lowercase the drive letter only.
	if scheme == "file" && len(rest) >= 3 && rest[0] == '/' && rest[2] == ':' {
		rest = "/" + strings.ToLower(rest[1:2]) + rest[2:]
	}

	return scheme + "://" + rest
}
