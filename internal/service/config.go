// Package service implements the demo microservice: three JSON endpoints
// describing the running build.
package service

import (
	"os"
	"time"
)

// Environment variables read at startup.
const (
	envAppVersion    = "APP_VERSION"
	envBuildDate     = "BUILD_DATE"
	envVCSRef        = "VCS_REF"
	envEnvironment   = "ENVIRONMENT"
	envRegion        = "AWS_REGION"
	envListenAddress = "LISTEN_ADDRESS"
	envLogLevel      = "LOG_LEVEL"
)

// ServiceName identifies this service in responses.
const ServiceName = "devops-cicd-demo"

// Config holds the build and runtime metadata served by the handlers. It is
// populated once at startup; handlers never read the environment.
type Config struct {
	Version       string
	BuildDate     string
	VCSRef        string
	Environment   string
	Region        string
	ListenAddress string
	LogLevel      string
}

// ConfigFromEnv builds a Config from the process environment.
func ConfigFromEnv() Config {
	return configFrom(os.Getenv, time.Now())
}

func configFrom(getenv func(string) string, now time.Time) Config {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}
	return Config{
		Version:       get(envAppVersion, "1.0.2"),
		BuildDate:     get(envBuildDate, now.Format(time.RFC3339)),
		VCSRef:        get(envVCSRef, "latest"),
		Environment:   get(envEnvironment, "production"),
		Region:        get(envRegion, "eu-north-1"),
		ListenAddress: get(envListenAddress, ":5000"),
		LogLevel:      get(envLogLevel, "info"),
	}
}
