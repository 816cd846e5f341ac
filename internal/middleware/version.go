package middleware

import (
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion represents API version information
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active", "deprecated", "sunset"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionMiddleware stamps responses with the API and build version.
type VersionMiddleware struct {
	build             string
	current           string
	supportedVersions map[string]APIVersion
}

// NewVersionMiddleware creates a new version middleware instance
func NewVersionMiddleware(build string) *VersionMiddleware {
	return &VersionMiddleware{
		build:   build,
		current: "v1",
		supportedVersions: map[string]APIVersion{
			"v1": {
				Version: "v1",
				Status:  "active",
				Message: "Current stable API version",
			},
		},
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", vm.current)
			if vm.build != "" {
				h.Set("X-App-Version", vm.build)
			}
			if ver, ok := vm.supportedVersions[vm.current]; ok && ver.Status == "deprecated" && ver.SunsetDate != nil {
				h.Set("X-API-Deprecated", "true")
				h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
				h.Set("Warning", "299 storeops \"This API version is deprecated and will be removed on "+ver.SunsetDate.Format("2006-01-02")+"\"")
			}
			return next(c)
		}
	}
}

// Build returns the application build version.
func (vm *VersionMiddleware) Build() string {
	return vm.build
}

// GetSupportedVersions returns the active and deprecated versions ordered by name.
func (vm *VersionMiddleware) GetSupportedVersions() []APIVersion {
	versions := make([]APIVersion, 0, len(vm.supportedVersions))
	for _, info := range vm.supportedVersions {
		if info.Status == "active" || info.Status == "deprecated" {
			versions = append(versions, info)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	return versions
}

// Deprecate marks a supported version as deprecated until sunset.
func (vm *VersionMiddleware) Deprecate(version string, sunset time.Time) {
	info, ok := vm.supportedVersions[version]
	if !ok {
		return
	}
	info.Status = "deprecated"
	info.SunsetDate = &sunset
	info.Message = "Deprecated, removal planned for " + sunset.Format("2006-01-02")
	vm.supportedVersions[version] = info
}
