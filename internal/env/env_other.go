//go:build !windows

package env

import "os"

// SetJavaHome cannot persist the variable outside Windows
func SetJavaHome(string) error {
	return ErrUnsupported
}

// GetJavaHome returns JAVA_HOME from the process environment
func GetJavaHome() (string, error) {
	return os.Getenv("JAVA_HOME"), nil
}
