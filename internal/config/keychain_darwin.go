//go:build darwin

package config

import "os/exec"

// keychainExec reads a generic password from the macOS Keychain.
// Provider API keys live under the "expertdb" service, one account
// per key (gemini_api_key, scrapin_api_key, news_api_key).
func keychainExec(service, account string) ([]byte, error) {
	return exec.Command(
		"security", "find-generic-password",
		"-s", service,
		"-a", account,
		"-w",
	).Output()
}
