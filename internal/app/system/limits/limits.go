// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBody caps JSON request bodies.
	MaxJSONBody = 10 << 20 // 10 MB

	// MaxMultipartMemory is the in-memory part of a multipart upload; the
	// rest spills to temp files. Image size itself is checked by uploads.
	MaxMultipartMemory = 10 << 20 // 10 MB
)
