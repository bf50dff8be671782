package ytcookies

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// Scenario: one Chrome profile and one Firefox profile are installed, with
// one cookie name present in both. Firefox is scanned last, so its value
// must win, and the final file holds the union.
func TestExtract_MergeAcrossBrowsers(t *testing.T) {
	env := fakeLinuxEnv(t)

	chromeStore := filepath.Join(env.XDGConfigHome, "google-chrome", "Default", "Cookies")
	createChromiumStore(t, chromeStore, "24", []testRow{
		{host: ".youtube.com", name: "SID", value: "chrome-sid", expiry: futureExpiry(), secure: true},
		{host: ".youtube.com", name: "HSID", value: "chrome-hsid", expiry: futureExpiry()},
		{host: ".youtube.com", name: "APISID", value: "chrome-apisid", expiry: futureExpiry()},
	})

	ffRoot := filepath.Join(env.Home, ".mozilla", "firefox")
	writeFileTree(t, filepath.Join(ffRoot, "profiles.ini"),
		[]byte("[Profile0]\nName=default-release\nIsRelative=1\nPath=ab.default-release\n"))
	createFirefoxStore(t, filepath.Join(ffRoot, "ab.default-release", "cookies.sqlite"), []testRow{
		{host: ".youtube.com", name: "SID", value: "firefox-sid", expiry: futureExpiry(), secure: true},
		{host: ".youtube.com", name: "LOGIN_INFO", value: "ff-login", expiry: futureExpiry()},
	})

	output := filepath.Join(t.TempDir(), "cookies.txt")
	report, err := Extract(context.Background(), env, Options{Output: output})
	if err != nil {
		t.Fatalf("extract failed: %v (sources=%v)", err, report.Sources)
	}

	if len(report.Cookies) != 4 {
		t.Fatalf("want 4 merged cookies got %d: %+v", len(report.Cookies), report.Cookies)
	}
	byName := map[string]Cookie{}
	for _, c := range report.Cookies {
		byName[c.Name] = c
	}
	if byName["SID"].Value != "firefox-sid" {
		t.Fatalf("later source must win for SID, got %q", byName["SID"].Value)
	}
	if byName["SID"].Source.Browser != BrowserFirefox {
		t.Fatalf("winning SID must come from firefox, got %+v", byName["SID"].Source)
	}

	parsed, err := ParseFile(report.Output)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 4 {
		t.Fatalf("want 4 lines in file got %d", len(parsed))
	}

	// Edge absent, Chrome and Firefox each one successful profile.
	var edgeNotFound, chromeOK, firefoxOK bool
	for _, s := range report.Sources {
		switch {
		case s.Browser == BrowserEdge && s.Failure == FailureNotFound:
			edgeNotFound = true
		case s.Browser == BrowserChrome && s.Failure == "" && s.Cookies == 3:
			chromeOK = true
		case s.Browser == BrowserFirefox && s.Failure == "" && s.Cookies == 2:
			firefoxOK = true
		}
	}
	if !edgeNotFound || !chromeOK || !firefoxOK {
		t.Fatalf("unexpected source reports: %v", report.Sources)
	}
}

// Scenario: no supported browser is installed. Every kind reports NotFound
// and the run ends in a single terminal error naming each one.
func TestExtract_NothingInstalled(t *testing.T) {
	env := fakeLinuxEnv(t)
	output := filepath.Join(t.TempDir(), "cookies.txt")

	report, err := Extract(context.Background(), env, Options{Output: output})
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, ErrNoCookies) {
		t.Fatalf("expected ErrNoCookies, got %v", err)
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T", err)
	}
	if len(exhausted.Sources) != 3 {
		t.Fatalf("want 3 sources got %v", exhausted.Sources)
	}
	for _, s := range exhausted.Sources {
		if s.Failure != FailureNotFound {
			t.Fatalf("want %s for %s, got %s", FailureNotFound, s.Browser, s.Failure)
		}
	}
	if len(report.Cookies) != 0 {
		t.Fatalf("no cookies expected, got %v", report.Cookies)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("nothing must be written on exhaustion")
	}
}

// Scenario: an Edge profile exists but its store is unreadable; no other
// browser succeeds. The terminal error must carry the Locked reason.
func TestExtract_LockedStoreReported(t *testing.T) {
	env := fakeLinuxEnv(t)
	badStore := filepath.Join(env.XDGConfigHome, "microsoft-edge", "Default", "Cookies")
	writeFileTree(t, badStore, []byte("this is not a sqlite database"))

	_, err := Extract(context.Background(), env, Options{Output: filepath.Join(t.TempDir(), "cookies.txt")})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %v", err)
	}
	var lockedSeen bool
	for _, s := range exhausted.Sources {
		if s.Browser == BrowserEdge && s.Failure == FailureLocked {
			lockedSeen = true
		}
	}
	if !lockedSeen {
		t.Fatalf("expected a locked Edge source, got %v", exhausted.Sources)
	}
}

func TestExtract_SingleBrowserSelection(t *testing.T) {
	env := fakeLinuxEnv(t)
	chromeStore := filepath.Join(env.XDGConfigHome, "google-chrome", "Default", "Cookies")
	createChromiumStore(t, chromeStore, "24", []testRow{
		{host: ".youtube.com", name: "SID", value: "v", expiry: futureExpiry()},
	})

	report, err := Extract(context.Background(), env, Options{
		Browsers: []Browser{BrowserChrome},
		Output:   filepath.Join(t.TempDir(), "cookies.txt"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Sources) != 1 || report.Sources[0].Browser != BrowserChrome {
		t.Fatalf("only chrome should be attempted, got %v", report.Sources)
	}
}

func TestParseBrowser(t *testing.T) {
	if bs, err := ParseBrowser("auto"); err != nil || len(bs) != 3 || bs[0] != BrowserEdge {
		t.Fatalf("auto must expand to the default order, got %v, %v", bs, err)
	}
	if bs, err := ParseBrowser("firefox"); err != nil || len(bs) != 1 || bs[0] != BrowserFirefox {
		t.Fatalf("unexpected: %v, %v", bs, err)
	}
	if _, err := ParseBrowser("safari"); err == nil {
		t.Fatal("expected error for unsupported browser")
	}
}
