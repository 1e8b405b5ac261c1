// Package env points JAVA_HOME at a selected SDK, either persistently (Windows registry)
// or by printing shell commands to evaluate.
package env

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned where JAVA_HOME cannot be persisted
var ErrUnsupported = errors.New("persisting JAVA_HOME is not supported on this platform; use --shell and eval the output")

// Shell dialects for ShellExport
const (
	ShellPOSIX      = "sh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
	ShellCmd        = "cmd"
)

// ShellExport returns commands that set JAVA_HOME and put its bin directory first on PATH
func ShellExport(home, shell string) (string, error) {
	home = filepath.Clean(home)

	switch strings.ToLower(shell) {
	case "", ShellPOSIX, "bash", "zsh":
		return fmt.Sprintf("export JAVA_HOME=%s\nexport PATH=\"$JAVA_HOME/bin:$PATH\"\n", posixQuote(home)), nil
	case ShellFish:
		return fmt.Sprintf("set -gx JAVA_HOME %s\nset -gx PATH \"$JAVA_HOME/bin\" $PATH\n", posixQuote(home)), nil
	case ShellPowerShell, "pwsh":
		quoted := "'" + strings.ReplaceAll(home, "'", "''") + "'"
		return fmt.Sprintf("$env:JAVA_HOME = %s\n$env:Path = \"$env:JAVA_HOME\\bin;$env:Path\"\n", quoted), nil
	case ShellCmd:
		return fmt.Sprintf("set \"JAVA_HOME=%s\"\nset \"PATH=%%JAVA_HOME%%\\bin;%%PATH%%\"\n", home), nil
	default:
		return "", fmt.Errorf("unknown shell %q (want sh, fish, powershell or cmd)", shell)
	}
}

func posixQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// updatePath removes entries belonging to the previous JAVA_HOME and puts
// %JAVA_HOME%\bin first
func updatePath(currentPath, oldJavaHome string) string {
	paths := strings.Split(currentPath, ";")
	newPaths := make([]string, 0, len(paths)+1)
	newPaths = append(newPaths, `%JAVA_HOME%\bin`)

	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if oldJavaHome != "" && strings.Contains(strings.ToLower(p), strings.ToLower(oldJavaHome)) {
			continue
		}
		if strings.Contains(strings.ToUpper(p), "%JAVA_HOME%") {
			continue
		}

		newPaths = append(newPaths, p)
	}

	return strings.Join(newPaths, ";")
}
