package registry

import (
	"sort"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

type SetupFunc func(g *echo.Group)

var versionRegistry = make(map[string][]SetupFunc)

// Register router setup function for specific API version
func Register(version string, setup SetupFunc) {
	versionRegistry[version] = append(versionRegistry[version], setup)
}

// SetupAllRoutes installs the validator and applies all registered routes
func SetupAllRoutes(e *echo.Echo) {
	e.Validator = NewValidator()

	log := logger.WithScope("SetupAllRoutes")
	if len(versionRegistry) == 0 {
		log.Warn().Msg("No routes registered in versionRegistry")
		return
	}

	versions := make([]string, 0, len(versionRegistry))
	for v := range versionRegistry {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	for _, version := range versions {
		setups := versionRegistry[version]
		log.Debug().Str("version", version).Int("routes", len(setups)).Msg("Setting up version group")
		g := e.Group("/" + version)
		for _, setup := range setups {
			setup(g)
		}
	}
}

// CustomValidator adapts go-playground/validator to echo.Validator
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates struct fields using validator tags
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
