//go:build darwin && !ios

package ytcookies

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// chromiumValueDecryptor derives the AES-CBC key from the browser's Safe
// Storage password in the login keychain. The `security` helper is used
// because it goes through the user-visible access prompt for another app's
// keychain item; a failed or denied read makes the whole browser unusable.
func chromiumValueDecryptor(vendor chromiumVendor, _ string, timeout time.Duration) (valueDecryptor, []string, error) {
	password := strings.TrimSpace(safeStoragePasswordOverride(vendor.browser))
	if password == "" {
		pw, err := macosReadKeychainPassword(timeout, vendor.safeStorageService, vendor.safeStorageAccount)
		if err != nil {
			return nil, nil, fmt.Errorf("macOS keychain read failed (%s): %w", vendor.safeStorageService, err)
		}
		password = strings.TrimSpace(pw)
	}
	if password == "" {
		return nil, nil, fmt.Errorf("macOS keychain returned an empty %s password", vendor.safeStorageService)
	}

	key := chromiumDeriveAESCBCKey(password, chromiumAESCBCIterationsMacOS)
	return func(encrypted []byte, metaVersion int64) ([]byte, bool) {
		plain, err := chromiumDecryptAESCBC(encrypted, key, metaVersion, true)
		return plain, err == nil
	}, nil, nil
}

func macosReadKeychainPassword(timeout time.Duration, service string, account string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdout, stderr, err := execCapture(ctx, "security", []string{
		"find-generic-password",
		"-w",
		"-a", account,
		"-s", service,
	})
	if err != nil {
		if stderr != "" {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr))
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}
