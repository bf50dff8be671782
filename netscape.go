package ytcookies

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// netscapeHeader is the first line yt-dlp and curl expect in a cookie file.
const netscapeHeader = "# Netscape HTTP Cookie File"

// dedupeCookies collapses duplicates by (domain, name), keeping the value
// seen last. The orchestrator appends sources in preference order, so the
// later scan wins.
func dedupeCookies(cookies []Cookie) []Cookie {
	if len(cookies) == 0 {
		return nil
	}

	merged := make(map[string]int, len(cookies))
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		key := strings.ToLower(strings.TrimPrefix(c.Domain, ".")) + "\x00" + c.Name
		if i, ok := merged[key]; ok {
			out[i] = c
			continue
		}
		merged[key] = len(out)
		out = append(out, c)
	}
	return out
}

// formatCookieLine renders one cookie as the fixed 7-field tab-separated
// layout: domain, include-subdomains, path, secure, expiry, name, value.
func formatCookieLine(c Cookie) string {
	includeSubdomains := "FALSE"
	if strings.HasPrefix(c.Domain, ".") {
		includeSubdomains = "TRUE"
	}
	secure := "FALSE"
	if c.Secure {
		secure = "TRUE"
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	return strings.Join([]string{
		c.Domain,
		includeSubdomains,
		path,
		secure,
		fmt.Sprintf("%d", c.Expiry),
		c.Name,
		c.Value,
	}, "\t")
}

// writeCookieFile writes the cookie file atomically: the content is built in
// a temp file next to the destination and renamed into place, so a crash
// mid-write never leaves a truncated file a download tool would trust.
func writeCookieFile(path string, cookies []Cookie) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(netscapeHeader + "\n"); err != nil {
		return err
	}
	for _, c := range cookies {
		if _, err := w.WriteString(formatCookieLine(c) + "\n"); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// ParseFile reads and validates an existing Netscape-format cookie file,
// e.g. one exported by hand and selected in the GUI. Comment lines and blank
// lines are skipped; every other line must carry exactly 7 tab-separated
// fields.
func ParseFile(path string) ([]Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []Cookie
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("ytcookies: %s:%d: expected 7 tab-separated fields, got %d", path, lineNo, len(fields))
		}
		expiry, err := parseInt64(fields[4])
		if err != nil {
			return nil, fmt.Errorf("ytcookies: %s:%d: invalid expiry %q", path, lineNo, fields[4])
		}
		if fields[0] == "" || fields[5] == "" {
			return nil, fmt.Errorf("ytcookies: %s:%d: empty domain or name", path, lineNo)
		}
		out = append(out, Cookie{
			Domain: fields[0],
			Path:   fields[2],
			Secure: fields[3] == "TRUE",
			Expiry: expiry,
			Name:   fields[5],
			Value:  fields[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
