//go:build !darwin && !linux && !windows

package ytcookies

import (
	"errors"
	"time"
)

func chromiumValueDecryptor(_ chromiumVendor, _ string, _ time.Duration) (valueDecryptor, []string, error) {
	return nil, nil, errors.New("chromium cookie decryption unsupported on this OS")
}
