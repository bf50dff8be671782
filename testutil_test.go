package ytcookies

import (
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type testRow struct {
	host      string
	name      string
	value     string
	encrypted []byte
	path      string
	expiry    int64 // epoch seconds; 0 = session
	secure    bool
}

func createChromiumStore(t *testing.T, path string, metaVersion string, rows []testRow) {
	t.Helper()
	db := openTestSQLite(t, path)
	mustExec(t, db, `CREATE TABLE meta(key TEXT PRIMARY KEY, value TEXT)`)
	mustExec(t, db, `INSERT INTO meta(key,value) VALUES('version',?)`, metaVersion)
	mustExec(t, db, `CREATE TABLE cookies(host_key TEXT, name TEXT, path TEXT, value TEXT, encrypted_value BLOB, expires_utc INTEGER, is_secure INTEGER, is_httponly INTEGER)`)
	for _, r := range rows {
		mustExec(t, db,
			`INSERT INTO cookies(host_key,name,path,value,encrypted_value,expires_utc,is_secure,is_httponly) VALUES(?,?,?,?,?,?,?,?)`,
			r.host, r.name, cookiePathOrRoot(r.path), r.value, r.encrypted, unixToChromiumExpires(r.expiry), boolInt(r.secure), 0,
		)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

func createFirefoxStore(t *testing.T, path string, rows []testRow) {
	t.Helper()
	db := openTestSQLite(t, path)
	mustExec(t, db, `CREATE TABLE moz_cookies(host TEXT, name TEXT, value TEXT, path TEXT, expiry INTEGER, isSecure INTEGER, isHttpOnly INTEGER)`)
	for _, r := range rows {
		mustExec(t, db,
			`INSERT INTO moz_cookies(host,name,value,path,expiry,isSecure,isHttpOnly) VALUES(?,?,?,?,?,?,?)`,
			r.host, r.name, r.value, cookiePathOrRoot(r.path), r.expiry, boolInt(r.secure), 0,
		)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatal(err)
	}
}

func cookiePathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixToChromiumExpires(unixSec int64) int64 {
	if unixSec == 0 {
		return 0
	}
	const unixEpochDiffMicros = int64(11644473600000000)
	return unixEpochDiffMicros + unixSec*1000000
}

func futureExpiry() int64 {
	return time.Now().Add(24 * time.Hour).Unix()
}

// fakeLinuxEnv returns an Env rooted in a temp dir. Path resolution is
// platform-pure, so the Linux layout works as a fixture on any host OS.
func fakeLinuxEnv(t *testing.T) Env {
	t.Helper()
	home := t.TempDir()
	return Env{
		Platform:      PlatformLinux,
		Home:          home,
		XDGConfigHome: filepath.Join(home, ".config"),
	}
}

func pkcs7Pad(t *testing.T, b []byte) []byte {
	t.Helper()
	paddingLen := aes.BlockSize - (len(b) % aes.BlockSize)
	if paddingLen == 0 {
		paddingLen = aes.BlockSize
	}
	out := make([]byte, 0, len(b)+paddingLen)
	out = append(out, b...)
	for i := 0; i < paddingLen; i++ {
		out = append(out, byte(paddingLen))
	}
	return out
}

func encryptAESCBCForTest(t *testing.T, prefix string, key []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	iv := []byte(chromiumAESCBCIV)
	padded := pkcs7Pad(t, plaintext)
	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(ciphertext, padded)
	return append([]byte(prefix), ciphertext...)
}

func encryptAESGCMForTest(t *testing.T, prefix string, key []byte, nonce []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	ciphertextAndTag := aesgcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(prefix)+len(nonce)+len(ciphertextAndTag))
	out = append(out, []byte(prefix)...)
	out = append(out, nonce...)
	out = append(out, ciphertextAndTag...)
	return out
}
