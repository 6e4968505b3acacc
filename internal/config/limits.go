package config

const (
	// MaxNameLength is the maximum length for task, category and group
	// names. Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNameLength = 255

	// MaxTitleLength is the maximum length for annotation titles.
	MaxTitleLength = 255

	// MaxDescriptionLength bounds group descriptions.
	MaxDescriptionLength = 2048

	// AnnotationPageSize is the page size for paginated annotation listings.
	AnnotationPageSize = 10

	// GroupPageSize is the page size for paginated group listings.
	GroupPageSize = 20

	// TaskPageSize is the page size for paginated task listings.
	TaskPageSize = 20

	// MaxUploadSize is the maximum accepted attachment size in bytes (15MB).
	MaxUploadSize = 15 << 20

	// MaxLogFiles is the number of rotated log files kept when file
	// logging is enabled.
	MaxLogFiles = 10
)

// AllowedUploadTypes lists the attachment MIME types accepted by the
// upload endpoints. Anything else is rejected with a validation error.
var AllowedUploadTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}
