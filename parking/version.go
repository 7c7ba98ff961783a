package parking

import (
	"runtime/debug"

	"github.com/blang/semver"
)

const modulePath = "github.com/s0up4200/parkctl"

// userAgent is resolved once at startup from the embedded build info.
var userAgent = "parkctl/" + moduleVersion()

// UserAgent returns the User-Agent sent with every request
func UserAgent() string {
	return userAgent
}

func moduleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return normalizeVersion("")
	}
	if info.Main.Path == modulePath {
		return normalizeVersion(info.Main.Version)
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return normalizeVersion(dep.Version)
		}
	}
	return normalizeVersion("")
}

// normalizeVersion maps "(devel)" and other non-semver strings to 0.0.0
func normalizeVersion(v string) string {
	parsed, err := semver.ParseTolerant(v)
	if err != nil {
		return "0.0.0"
	}
	return parsed.String()
}
