package ytcookies

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Browser identifies a cookie source.
type Browser string

const (
	// BrowserEdge is Microsoft Edge.
	BrowserEdge Browser = "edge"
	// BrowserChrome is Google Chrome.
	BrowserChrome Browser = "chrome"
	// BrowserFirefox is Mozilla Firefox.
	BrowserFirefox Browser = "firefox"
)

// ParseBrowser maps a user-supplied selector to a Browser. "auto" and ""
// select the default fallback order.
func ParseBrowser(s string) ([]Browser, error) {
	switch s {
	case "", "auto":
		return DefaultBrowsers(), nil
	case "edge":
		return []Browser{BrowserEdge}, nil
	case "chrome":
		return []Browser{BrowserChrome}, nil
	case "firefox":
		return []Browser{BrowserFirefox}, nil
	default:
		return nil, fmt.Errorf("ytcookies: unknown browser %q (use auto, edge, chrome or firefox)", s)
	}
}

// DefaultBrowsers returns the fallback order tried by auto selection:
// Edge first, then Chrome, then Firefox.
func DefaultBrowsers() []Browser {
	return []Browser{BrowserEdge, BrowserChrome, BrowserFirefox}
}

// Platform is the host operating system.
type Platform string

const (
	// PlatformWindows is Windows.
	PlatformWindows Platform = "windows"
	// PlatformDarwin is macOS.
	PlatformDarwin Platform = "darwin"
	// PlatformLinux is Linux.
	PlatformLinux Platform = "linux"
)

// Env carries the platform and filesystem roots profile discovery depends on.
// Discovery never reads ambient process state directly, so tests can point an
// Env at a fixture tree.
type Env struct {
	Platform Platform

	// Home is the user home directory.
	Home string
	// LocalAppData is %LOCALAPPDATA% (Windows only).
	LocalAppData string
	// RoamingAppData is %APPDATA% (Windows only).
	RoamingAppData string
	// XDGConfigHome is $XDG_CONFIG_HOME (Linux only; defaults to ~/.config).
	XDGConfigHome string
}

// SystemEnv builds an Env from the real process environment.
func SystemEnv() Env {
	home, _ := os.UserHomeDir()
	env := Env{
		Platform:       Platform(runtime.GOOS),
		Home:           home,
		LocalAppData:   os.Getenv("LOCALAPPDATA"),
		RoamingAppData: os.Getenv("APPDATA"),
		XDGConfigHome:  os.Getenv("XDG_CONFIG_HOME"),
	}
	if env.XDGConfigHome == "" && home != "" {
		env.XDGConfigHome = filepath.Join(home, ".config")
	}
	return env
}

// Profile identifies one discovered browser profile and its cookie store.
type Profile struct {
	Browser Browser
	// Name is the profile's display name (e.g. "Default", "Profile 1").
	Name string
	// StorePath is the cookie database file.
	StorePath string
	// UserData is the Chromium user-data root holding Local State; empty for Firefox.
	UserData string
}

// record is one row read from a cookie store, before decryption.
type record struct {
	host           string
	name           string
	path           string
	value          string
	encryptedValue []byte
	expiry         int64 // epoch seconds; 0 = session cookie
	secure         bool
	httpOnly       bool
}

// Cookie is a decrypted browser cookie.
type Cookie struct {
	// Domain is the host key as stored; a leading dot marks a domain cookie.
	Domain   string
	Name     string
	Value    string
	Path     string
	Expiry   int64 // epoch seconds; 0 = session cookie
	Secure   bool
	HTTPOnly bool

	Source Source
}

// Source describes where a cookie came from.
type Source struct {
	Browser   Browser
	Profile   string
	StorePath string
}

// Options configures an extraction run.
type Options struct {
	// Browsers is the source preference order. Empty means DefaultBrowsers().
	Browsers []Browser

	// Domain is the target domain suffix. Defaults to "youtube.com";
	// subdomains are always included.
	Domain string

	// Output is the cookie file path. Defaults to "youtube_cookies.txt".
	Output string

	// IncludeExpired keeps cookies whose expiry is in the past.
	IncludeExpired bool

	// Timeout bounds OS helper calls (keychain/keyring). Defaults to 3s.
	Timeout time.Duration
}

// Report summarizes one extraction run.
type Report struct {
	// Output is the absolute path of the written cookie file.
	Output string
	// Cookies is the merged, deduplicated cookie set that was written.
	Cookies []Cookie
	// Sources lists the outcome of every browser/profile attempted.
	Sources []SourceReport
	// Dropped counts records that failed decryption across all sources.
	Dropped int
	// Warnings are non-fatal diagnostics accumulated during the run.
	Warnings []string
}

// SourceReport is the outcome of one browser/profile attempt.
type SourceReport struct {
	Browser Browser
	// Profile is empty when the browser itself was not found.
	Profile string
	// Failure is empty when the source yielded cookies.
	Failure FailureKind
	// Err carries detail for Failure; may be nil.
	Err error
	// Cookies and Dropped count usable and undecryptable records.
	Cookies int
	Dropped int
}

func (s SourceReport) String() string {
	label := string(s.Browser)
	if s.Profile != "" {
		label += "/" + s.Profile
	}
	if s.Failure == "" {
		return fmt.Sprintf("%s: %d cookies", label, s.Cookies)
	}
	if s.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", label, s.Failure, s.Err)
	}
	return fmt.Sprintf("%s: %s", label, s.Failure)
}
