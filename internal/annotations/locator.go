package annotations

import (
	"fmt"
	"strings"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
)

// Locator points at one value inside a secret store group:
// <source>:<engine>/<path>#<name>.
type Locator struct {
	Source string
	Engine string
	Path   string
	Name   string
}

// GroupPath is the store path of the group that holds the value.
func (l Locator) GroupPath() string {
	return l.Engine + "/" + l.Path
}

func (l Locator) String() string {
	return fmt.Sprintf("%s:%s/%s#%s", l.Source, l.Engine, l.Path, l.Name)
}

// ParseLocator decodes <source>:<engine>/<path>#<name>. Every split must
// yield exactly two parts and no component may be empty.
func ParseLocator(value string) (Locator, error) {
	value = strings.TrimSpace(value)

	hashParts := strings.Split(value, "#")
	if len(hashParts) != 2 {
		return Locator{}, fmt.Errorf("%w: %q must contain exactly one '#'", cerrors.ErrInvalidLocator, value)
	}
	sourceAndPath, name := hashParts[0], hashParts[1]

	colonParts := strings.Split(sourceAndPath, ":")
	if len(colonParts) != 2 {
		return Locator{}, fmt.Errorf("%w: %q must contain exactly one ':' before '#'", cerrors.ErrInvalidLocator, value)
	}
	source, enginePath := colonParts[0], colonParts[1]

	segments := strings.Split(enginePath, "/")
	engine := segments[0]
	path := strings.Join(segments[1:], "/")

	if source == "" || engine == "" || path == "" || name == "" {
		return Locator{}, fmt.Errorf("%w: %q has an empty component", cerrors.ErrInvalidLocator, value)
	}

	return Locator{Source: source, Engine: engine, Path: path, Name: name}, nil
}
