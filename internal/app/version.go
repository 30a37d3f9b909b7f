package app

const ServiceName = "school-service"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'github.com/appdotbuilder/school-management-app/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
