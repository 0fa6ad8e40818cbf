package constants

import "time"

const (
	AppName = "libinstall"
)

const (
	DefaultManifestPath   = "package.json"
	DefaultManifestField  = "libraries.all"
	DefaultDestination    = "."
	DefaultArchivePattern = "downloaded_file-*.zip"
)

const (
	DefaultUserAgent  = AppName
	DefaultMetricsJob = AppName
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	DirPerm         = 0o755
	DefaultFilePerm = 0o644
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	RunStatusSuccess        = "success"
	RunStatusNotFound       = "not_found"
	RunStatusDownloadFailed = "download_failed"
	RunStatusError          = "error"
)

// FailureLabelTransport labels download failures that never received a status.
const FailureLabelTransport = "transport"
