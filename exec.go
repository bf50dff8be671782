package ytcookies

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

var execCommandContext = exec.CommandContext

func execCapture(ctx context.Context, name string, args []string) (stdout string, stderr string, err error) {
	cmd := execCommandContext(ctx, name, args...)
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()
	if runErr != nil {
		return stdout, stderr, fmt.Errorf("%s: %w", name, runErr)
	}
	return stdout, stderr, nil
}

// safeStoragePasswordOverride lets tests and headless CI supply the Safe
// Storage password without a live credential store.
func safeStoragePasswordOverride(b Browser) string {
	switch b {
	case BrowserChrome:
		return os.Getenv("YTCOOKIES_CHROME_SAFE_STORAGE_PASSWORD")
	case BrowserEdge:
		return os.Getenv("YTCOOKIES_EDGE_SAFE_STORAGE_PASSWORD")
	default:
		return os.Getenv("YTCOOKIES_SAFE_STORAGE_PASSWORD")
	}
}
