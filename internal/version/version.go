package version

// Set at build time via -ldflags "-X github.com/fbz-tec/vexport/internal/version.AppVersion=..."
var (
	AppVersion = "dev"
	BuildTime  = "unknown"
	GitCommit  = "none"
)
