package version

// Set at build time:
//
//	go build -ldflags "-X fleximart-catalog/internal/version.Version=v1.0.0 -X fleximart-catalog/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
