package config

import "time"

const (
	// MaxFolderNameLength is the maximum length for folder names, in runes.
	MaxFolderNameLength = 255

	// MaxImageSize is the largest image accepted for upload or import (10 MiB).
	MaxImageSize = 10 << 20

	// MaxUploadBatch caps the number of files in one upload request.
	MaxUploadBatch = 50

	// MaxUploadRequestSize bounds a multipart upload body.
	MaxUploadRequestSize = MaxUploadBatch * MaxImageSize

	// DefaultUploadConcurrency is how many uploads run at once per request.
	DefaultUploadConcurrency = 4

	// TransferTimeout bounds reading an upload body and answering an upload
	// or import; the server's own timeouts are sized for JSON requests.
	TransferTimeout = 10 * time.Minute

	// DefaultPickerPageSize matches the page the picker shows at once.
	DefaultPickerPageSize = 20

	// MaxPickerPageSize is the Drive API's upper bound for files.list.
	MaxPickerPageSize = 1000
)
