//go:build linux && !android

package ytcookies

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

var errKWalletRead = errors.New("kwallet-query failed")

type linuxKeyringBackend string

const (
	linuxKeyringGnome   linuxKeyringBackend = "gnome"
	linuxKeyringKWallet linuxKeyringBackend = "kwallet"
	linuxKeyringBasic   linuxKeyringBackend = "basic"
)

// chromiumValueDecryptor on Linux always succeeds: v10 values use the
// hardcoded "peanuts" password, v11 values need the Safe Storage password
// from the desktop keyring. A missing keyring only loses v11 records, so it
// is reported as a warning, not a key failure.
func chromiumValueDecryptor(vendor chromiumVendor, _ string, timeout time.Duration) (valueDecryptor, []string, error) {
	password, warnings := linuxSafeStoragePassword(vendor, timeout)

	v10Key := chromiumDeriveAESCBCKey("peanuts", chromiumAESCBCIterationsLinux)
	emptyKey := chromiumDeriveAESCBCKey("", chromiumAESCBCIterationsLinux)
	v11Key := chromiumDeriveAESCBCKey(password, chromiumAESCBCIterationsLinux)

	return func(encrypted []byte, metaVersion int64) ([]byte, bool) {
		if len(encrypted) < 3 {
			return nil, false
		}
		switch string(encrypted[:3]) {
		case "v10":
			for _, key := range [][]byte{v10Key, emptyKey} {
				plain, err := chromiumDecryptAESCBC(encrypted, key, metaVersion, false)
				if err == nil {
					return plain, true
				}
			}
			return nil, false
		case "v11":
			for _, key := range [][]byte{v11Key, emptyKey} {
				plain, err := chromiumDecryptAESCBC(encrypted, key, metaVersion, false)
				if err == nil {
					return plain, true
				}
			}
			return nil, false
		default:
			return nil, false
		}
	}, warnings, nil
}

func linuxSafeStoragePassword(vendor chromiumVendor, timeout time.Duration) (password string, warnings []string) {
	// Escape hatch for deterministic tooling/CI.
	if override := strings.TrimSpace(safeStoragePasswordOverride(vendor.browser)); override != "" {
		return override, nil
	}

	backend := parseLinuxKeyringBackend()
	if backend == "" {
		backend = chooseLinuxKeyringBackend()
	}

	switch backend {
	case linuxKeyringBasic:
		return "", nil
	case linuxKeyringKWallet:
		pw, err := linuxKWalletLookup(timeout, vendor.safeStorageService, vendor.safeStorageAccount)
		if err == nil {
			return pw, nil
		}
		return "", []string{"ytcookies: failed to read Linux keyring via kwallet-query; v11 cookies may be unavailable"}
	default:
		if pw, err := keyring.Get(vendor.safeStorageService, vendor.safeStorageAccount); err == nil && strings.TrimSpace(pw) != "" {
			return strings.TrimSpace(pw), nil
		}
		pw, err := linuxSecretToolLookup(timeout, vendor.safeStorageService, vendor.safeStorageAccount)
		if err == nil {
			return pw, nil
		}
		return "", []string{"ytcookies: failed to read Linux keyring via secret-tool; v11 cookies may be unavailable"}
	}
}

func parseLinuxKeyringBackend() linuxKeyringBackend {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("YTCOOKIES_LINUX_KEYRING")))
	switch raw {
	case "gnome":
		return linuxKeyringGnome
	case "kwallet":
		return linuxKeyringKWallet
	case "basic":
		return linuxKeyringBasic
	default:
		return ""
	}
}

func chooseLinuxKeyringBackend() linuxKeyringBackend {
	xdg := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	for _, p := range strings.Split(xdg, ":") {
		if strings.TrimSpace(p) == "kde" {
			return linuxKeyringKWallet
		}
	}
	if os.Getenv("KDE_FULL_SESSION") != "" {
		return linuxKeyringKWallet
	}
	return linuxKeyringGnome
}

func linuxSecretToolLookup(timeout time.Duration, service string, account string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdout, _, err := execCapture(ctx, "secret-tool", []string{"lookup", "service", service, "account", account})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

func linuxKWalletLookup(timeout time.Duration, service string, account string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	wallet := "kdewallet"
	serviceName, walletPath := linuxKWalletServiceNameAndPath()
	stdout, _, err := execCapture(ctx, "dbus-send", []string{
		"--session",
		"--print-reply=literal",
		"--dest=" + serviceName,
		walletPath,
		"org.kde.KWallet.networkWallet",
	})
	if err == nil {
		if w := strings.TrimSpace(strings.ReplaceAll(stdout, "\"", "")); w != "" {
			wallet = w
		}
	}

	folder := account + " Keys"
	stdout, _, err = execCapture(ctx, "kwallet-query", []string{"--read-password", service, "--folder", folder, wallet})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(stdout)
	if strings.HasPrefix(strings.ToLower(out), "failed to read") {
		return "", errKWalletRead
	}
	return out, nil
}

func linuxKWalletServiceNameAndPath() (serviceName string, walletPath string) {
	switch strings.TrimSpace(os.Getenv("KDE_SESSION_VERSION")) {
	case "6":
		return "org.kde.kwalletd6", "/modules/kwalletd6"
	case "5":
		return "org.kde.kwalletd5", "/modules/kwalletd5"
	default:
		return "org.kde.kwalletd", "/modules/kwalletd"
	}
}
