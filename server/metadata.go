package server

// Build-time metadata variables set via LD flags
var (
	BuildServiceName    = "vidgrab"
	BuildServiceVersion = "dev"
	BuildCommit         = "unknown"
)
