//go:build windows

package env

import (
	"fmt"
	"path/filepath"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	hwndBroadcast   = 0xFFFF
	wmSettingChange = 0x001A
)

var (
	user32       = syscall.NewLazyDLL("user32.dll")
	sendMessageW = user32.NewProc("SendMessageW")
)

// envKey returns the system environment key for administrators and the user key otherwise
func envKey(access uint32) (registry.Key, error) {
	if isAdmin() {
		return registry.OpenKey(registry.LOCAL_MACHINE, `System\CurrentControlSet\Control\Session Manager\Environment`, access)
	}
	return registry.OpenKey(registry.CURRENT_USER, `Environment`, access)
}

// SetJavaHome persists JAVA_HOME and puts %JAVA_HOME%\bin first on Path
func SetJavaHome(javaPath string) error {
	javaPath = filepath.Clean(javaPath)

	key, err := envKey(registry.SET_VALUE | registry.QUERY_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open registry key: %w", err)
	}
	defer key.Close()

	// The user key may have no Path of its own
	currentPath, _, err := key.GetStringValue("Path")
	if err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("failed to read PATH: %w", err)
	}

	oldJavaHome, _, _ := key.GetStringValue("JAVA_HOME")

	if err := key.SetStringValue("JAVA_HOME", javaPath); err != nil {
		return fmt.Errorf("failed to set JAVA_HOME: %w", err)
	}

	if err := key.SetExpandStringValue("Path", updatePath(currentPath, oldJavaHome)); err != nil {
		return fmt.Errorf("failed to update PATH: %w", err)
	}

	broadcastSettingChange()
	return nil
}

// GetJavaHome returns the persisted JAVA_HOME
func GetJavaHome() (string, error) {
	key, err := envKey(registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("failed to open registry key: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue("JAVA_HOME")
	if err != nil {
		return "", fmt.Errorf("JAVA_HOME not set: %w", err)
	}
	return value, nil
}

// broadcastSettingChange tells running programs to reload the environment
func broadcastSettingChange() {
	env := syscall.StringToUTF16Ptr("Environment")
	sendMessageW.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
	)
}

func isAdmin() bool {
	var sid *windows.SID

	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := windows.Token(0).IsMember(sid)
	if err != nil {
		return false
	}
	return member
}
