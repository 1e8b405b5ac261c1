package sdk

import "fmt"

// Source tags identify where a candidate came from
const (
	SourceIvy    = "Ivy"    // Downloaded into the local artifact cache by sdkpick
	SourceSystem = "System" // Auto-detected in a standard or configured search location
	SourceCustom = "Custom" // Registered explicitly as a custom path
)

// Descriptor identifies the files that make up one SDK installation
type Descriptor struct {
	Home     string   // SDK home directory (JAVA_HOME)
	Version  string   // Version reported by the installation
	Vendor   string   // Implementor, if known
	Binaries []string // Launchers found under bin/
}

// Choice is a display-ready candidate for selection
type Choice struct {
	Source     string
	Version    string
	Descriptor Descriptor
}

// Key is the identity used for de-duplication and lookup
type Key struct {
	Source  string
	Version string
}

// Key returns the (source, version) identity of the choice
func (c Choice) Key() Key {
	return Key{Source: c.Source, Version: c.Version}
}

func (c Choice) String() string {
	return fmt.Sprintf("%s %s (%s)", c.Source, c.Version, c.Descriptor.Home)
}
