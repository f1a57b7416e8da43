package server

import (
	"net/http"
	"strings"
)

const (
	// DefaultAPIVersion is served when the client does not pin one.
	DefaultAPIVersion = "v1alpha1"

	// vendorMimePrefix starts the vendor media type clients use to pin
	// an API version, application/vnd.helmwire.<version>+json.
	vendorMimePrefix = "application/vnd.helmwire."

	vendorMimeSuffix = "+json"
)

// supportedAPIVersions lists the versions this server can speak.
var supportedAPIVersions = map[string]bool{
	"v1alpha1": true,
}

// negotiateAPIVersion resolves the API version from the Accept header.
// Anything other than a well-formed vendor media type naming a
// supported version falls back to the default.
func negotiateAPIVersion(r *http.Request) string {
	accept := r.Header.Get("Accept")
	for _, part := range strings.Split(accept, ",") {
		mime := strings.TrimSpace(part)
		if i := strings.Index(mime, ";"); i >= 0 {
			mime = strings.TrimSpace(mime[:i])
		}

		if !strings.HasPrefix(mime, vendorMimePrefix) || !strings.HasSuffix(mime, vendorMimeSuffix) {
			continue
		}
		version := strings.TrimSuffix(strings.TrimPrefix(mime, vendorMimePrefix), vendorMimeSuffix)
		if isValidAPIVersion(version) {
			return version
		}
	}
	return DefaultAPIVersion
}

// isValidAPIVersion reports whether the server can speak version.
func isValidAPIVersion(version string) bool {
	return supportedAPIVersions[version]
}
