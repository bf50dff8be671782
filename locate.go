package ytcookies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-ini/ini"
)

// discoverProfiles probes well-known paths for installed profiles of b.
// An empty result means the browser is not installed; it is not an error.
func discoverProfiles(env Env, b Browser) ([]Profile, []string) {
	switch b {
	case BrowserEdge, BrowserChrome:
		return chromiumProfiles(env, b)
	case BrowserFirefox:
		return firefoxProfiles(env)
	default:
		return nil, []string{fmt.Sprintf("ytcookies: unsupported browser %q", b)}
	}
}

func chromiumUserDataDirs(env Env, b Browser) []string {
	switch env.Platform {
	case PlatformWindows:
		if env.LocalAppData == "" {
			return nil
		}
		switch b {
		case BrowserChrome:
			return []string{filepath.Join(env.LocalAppData, "Google", "Chrome", "User Data")}
		case BrowserEdge:
			return []string{filepath.Join(env.LocalAppData, "Microsoft", "Edge", "User Data")}
		}
	case PlatformDarwin:
		if env.Home == "" {
			return nil
		}
		base := filepath.Join(env.Home, "Library", "Application Support")
		switch b {
		case BrowserChrome:
			return []string{filepath.Join(base, "Google", "Chrome")}
		case BrowserEdge:
			return []string{filepath.Join(base, "Microsoft Edge")}
		}
	case PlatformLinux:
		base := env.XDGConfigHome
		if base == "" {
			return nil
		}
		switch b {
		case BrowserChrome:
			return []string{filepath.Join(base, "google-chrome")}
		case BrowserEdge:
			return []string{filepath.Join(base, "microsoft-edge")}
		}
	}
	return nil
}

func chromiumProfiles(env Env, b Browser) ([]Profile, []string) {
	var out []Profile
	var warnings []string
	for _, root := range chromiumUserDataDirs(env, b) {
		profiles, w := chromiumProfilesInRoot(b, root)
		warnings = append(warnings, w...)
		out = append(out, profiles...)
	}
	return out, warnings
}

// chromiumProfilesInRoot enumerates profiles under one user-data root.
// Local State's info_cache is authoritative when it parses; otherwise the
// root is probed for `Default` and `Profile N` subdirectories, since a user
// may be logged in under a non-default profile.
func chromiumProfilesInRoot(b Browser, userDataDir string) ([]Profile, []string) {
	localStateBytes, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return chromiumProbeProfileDirs(b, userDataDir), nil
	}

	var localState struct {
		Profile struct {
			InfoCache map[string]struct {
				Name string `json:"name"`
			} `json:"info_cache"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(localStateBytes, &localState); err != nil {
		return chromiumProbeProfileDirs(b, userDataDir),
			[]string{fmt.Sprintf("ytcookies: failed to parse Local State (%s): %v", userDataDir, err)}
	}
	if len(localState.Profile.InfoCache) == 0 {
		return chromiumProbeProfileDirs(b, userDataDir), nil
	}

	dirs := make([]string, 0, len(localState.Profile.InfoCache))
	for profDir := range localState.Profile.InfoCache {
		dirs = append(dirs, profDir)
	}
	sort.Strings(dirs)

	var out []Profile
	for _, profDir := range dirs {
		name := localState.Profile.InfoCache[profDir].Name
		if name == "" {
			name = profDir
		}
		if p, ok := chromiumProfileAt(b, userDataDir, profDir, name); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func chromiumProbeProfileDirs(b Browser, userDataDir string) []Profile {
	entries, err := os.ReadDir(userDataDir)
	if err != nil {
		return nil
	}
	var out []Profile
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name != "Default" && !strings.HasPrefix(name, "Profile ") {
			continue
		}
		if p, ok := chromiumProfileAt(b, userDataDir, name, name); ok {
			out = append(out, p)
		}
	}
	return out
}

func chromiumProfileAt(b Browser, userDataDir, profDir, name string) (Profile, bool) {
	// Newer Chromium keeps the DB under Network/; older layouts at the profile root.
	candidates := []string{
		filepath.Join(userDataDir, profDir, "Network", "Cookies"),
		filepath.Join(userDataDir, profDir, "Cookies"),
	}
	for _, p := range candidates {
		if fileExists(p) {
			return Profile{Browser: b, Name: name, StorePath: p, UserData: userDataDir}, true
		}
	}
	return Profile{}, false
}

func firefoxRoot(env Env) string {
	switch env.Platform {
	case PlatformWindows:
		if env.RoamingAppData == "" {
			return ""
		}
		return filepath.Join(env.RoamingAppData, "Mozilla", "Firefox")
	case PlatformDarwin:
		if env.Home == "" {
			return ""
		}
		return filepath.Join(env.Home, "Library", "Application Support", "Firefox")
	case PlatformLinux:
		if env.Home == "" {
			return ""
		}
		return filepath.Join(env.Home, ".mozilla", "firefox")
	}
	return ""
}

func firefoxProfiles(env Env) ([]Profile, []string) {
	root := firefoxRoot(env)
	if root == "" {
		return nil, nil
	}

	cfg, err := ini.Load(filepath.Join(root, "profiles.ini"))
	if err != nil {
		return firefoxProbeProfileDirs(root), nil
	}

	var out []Profile
	for _, secName := range cfg.SectionStrings() {
		if !strings.HasPrefix(secName, "Profile") {
			continue
		}
		sec := cfg.Section(secName)
		pathStr := filepath.FromSlash(sec.Key("Path").String())
		if pathStr == "" {
			continue
		}
		if sec.Key("IsRelative").String() == "1" {
			pathStr = filepath.Join(root, pathStr)
		}
		dbPath := filepath.Join(pathStr, "cookies.sqlite")
		if !fileExists(dbPath) {
			continue
		}
		name := sec.Key("Name").String()
		if name == "" {
			name = filepath.Base(pathStr)
		}
		out = append(out, Profile{Browser: BrowserFirefox, Name: name, StorePath: dbPath})
	}
	return out, nil
}

// firefoxProbeProfileDirs scans Profiles/ for default release profiles when
// profiles.ini is missing.
func firefoxProbeProfileDirs(root string) []Profile {
	for _, dir := range []string{filepath.Join(root, "Profiles"), root} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		var out []Profile
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if !strings.HasSuffix(name, ".default") && !strings.HasSuffix(name, ".default-release") {
				continue
			}
			dbPath := filepath.Join(dir, name, "cookies.sqlite")
			if fileExists(dbPath) {
				out = append(out, Profile{Browser: BrowserFirefox, Name: name, StorePath: dbPath})
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
