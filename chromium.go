package ytcookies

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type chromiumVendor struct {
	browser Browser

	// user-visible
	label string

	// "Safe Storage" secret identifiers in the OS credential store.
	safeStorageService string
	safeStorageAccount string
}

func chromiumVendorForBrowser(b Browser) chromiumVendor {
	switch b {
	case BrowserChrome:
		return chromiumVendor{browser: b, label: "Chrome", safeStorageService: "Chrome Safe Storage", safeStorageAccount: "Chrome"}
	case BrowserEdge:
		return chromiumVendor{browser: b, label: "Microsoft Edge", safeStorageService: "Microsoft Edge Safe Storage", safeStorageAccount: "Microsoft Edge"}
	default:
		return chromiumVendor{browser: b, label: string(b), safeStorageService: fmt.Sprintf("%s Safe Storage", b), safeStorageAccount: string(b)}
	}
}

// valueDecryptor reverses the OS-specific encryption on one cookie value.
// A false return drops that record only, never the batch.
type valueDecryptor func(encrypted []byte, metaVersion int64) ([]byte, bool)

// chromiumKeys resolves the browser's decryptor lazily and memoizes the
// result across that browser's profiles. Key material is only fetched once a
// record actually needs it, so stores holding nothing but plaintext values
// never touch the OS credential store.
type chromiumKeys struct {
	vendor   chromiumVendor
	userData string
	timeout  time.Duration

	resolved bool
	decrypt  valueDecryptor
	warnings []string
	err      error
}

func (k *chromiumKeys) get() (valueDecryptor, []string, error) {
	if !k.resolved {
		k.resolved = true
		k.decrypt, k.warnings, k.err = chromiumValueDecryptor(k.vendor, k.userData, k.timeout)
	}
	return k.decrypt, k.warnings, k.err
}

type chromiumRow struct {
	hostKey        string
	name           string
	path           string
	value          string
	encryptedValue []byte
	expiresUTC     int64
	isSecure       bool
	isHTTPOnly     bool
}

// readChromiumProfile extracts the domain's cookies from one profile's store.
// The store is snapshotted before opening; the snapshot is removed on every
// exit path. A FailureKeyUnavailable report tells the caller the whole
// browser is unusable, not just this profile.
func readChromiumProfile(ctx context.Context, prof Profile, domain string, keys *chromiumKeys, includeExpired bool) ([]Cookie, SourceReport, []string) {
	rep := SourceReport{Browser: prof.Browser, Profile: prof.Name}

	snap, cleanup, err := snapshotStore(prof.StorePath)
	if err != nil {
		rep.Failure, rep.Err = snapshotFailureKind(err), err
		return nil, rep, nil
	}
	defer cleanup()

	db, err := openStore(ctx, snap)
	if err != nil {
		rep.Failure, rep.Err = FailureLocked, err
		return nil, rep, nil
	}
	defer func() { _ = db.Close() }()

	metaVersion := chromiumMetaVersion(ctx, db)

	rows, err := chromiumQueryRows(ctx, db, domain)
	if err != nil {
		rep.Failure, rep.Err = FailureLocked, err
		return nil, rep, nil
	}

	var warnings []string
	var out []Cookie
	now := time.Now().Unix()
	for _, row := range rows {
		if row.name == "" || row.hostKey == "" {
			continue
		}

		value := row.value
		if value == "" && len(row.encryptedValue) > 0 {
			decrypt, keyWarnings, keyErr := keys.get()
			warnings = append(warnings, keyWarnings...)
			if keyErr != nil {
				rep.Failure, rep.Err = FailureKeyUnavailable, keyErr
				return nil, rep, warnings
			}
			plain, ok := decrypt(row.encryptedValue, metaVersion)
			if !ok {
				rep.Dropped++
				continue
			}
			decoded, ok := decodeCookieValue(plain)
			if !ok {
				rep.Dropped++
				continue
			}
			value = decoded
		}
		if value == "" {
			rep.Dropped++
			continue
		}

		expiry := chromiumExpiresToUnix(row.expiresUTC)
		if !includeExpired && expiry > 0 && expiry < now {
			continue
		}

		path := row.path
		if path == "" {
			path = "/"
		}
		out = append(out, Cookie{
			Domain:   row.hostKey,
			Name:     row.name,
			Value:    value,
			Path:     path,
			Expiry:   expiry,
			Secure:   row.isSecure,
			HTTPOnly: row.isHTTPOnly,
			Source:   Source{Browser: prof.Browser, Profile: prof.Name, StorePath: prof.StorePath},
		})
	}

	rep.Cookies = len(out)
	if len(out) == 0 {
		if rep.Dropped > 0 {
			rep.Failure = FailureDecrypt
		} else {
			rep.Failure = FailureNoCookies
		}
	}
	return out, rep, warnings
}

func chromiumMetaVersion(ctx context.Context, db *sql.DB) int64 {
	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value); err != nil {
		return 0
	}
	v, err := parseInt64(value)
	if err != nil {
		return 0
	}
	return v
}

func chromiumQueryRows(ctx context.Context, db *sql.DB, domain string) ([]chromiumRow, error) {
	where, args := domainSuffixClause("host_key", domain)
	query := strings.Join([]string{
		`SELECT host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_httponly`,
		`FROM cookies`,
		`WHERE (` + where + `)`,
		`ORDER BY host_key, name, expires_utc DESC`,
	}, " ")

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []chromiumRow
	for rows.Next() {
		var r chromiumRow
		var encrypted []byte
		var expires sql.NullInt64
		var secure sql.NullInt64
		var httpOnly sql.NullInt64

		if err := rows.Scan(&r.hostKey, &r.name, &r.path, &r.value, &encrypted, &expires, &secure, &httpOnly); err != nil {
			return nil, err
		}

		r.encryptedValue = encrypted
		if expires.Valid {
			r.expiresUTC = expires.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.isHTTPOnly = httpOnly.Valid && httpOnly.Int64 == 1

		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// domainSuffixClause matches the domain itself, its dotted form, and all
// subdomains. Hosts are passed via placeholders.
func domainSuffixClause(column, domain string) (string, []any) {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "."))
	if domain == "" {
		return "1=0", nil
	}
	clause := column + " = ? OR " + column + " = ? OR " + column + " LIKE ?"
	return clause, []any{domain, "." + domain, "%." + domain}
}

// Chromium stores times as microseconds since 1601-01-01 UTC.
func chromiumExpiresToUnix(expiresUTC int64) int64 {
	const unixEpochDiffMicros = int64(11644473600000000)
	if expiresUTC == 0 {
		return 0
	}
	unixMicros := expiresUTC - unixEpochDiffMicros
	if unixMicros <= 0 {
		return 0
	}
	return unixMicros / 1000000
}
