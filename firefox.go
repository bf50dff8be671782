package ytcookies

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// readFirefoxProfile extracts the domain's cookies from one Firefox profile.
// Firefox stores cookie values unencrypted, so this is a pass-through with
// field-shape validation. Same snapshot discipline as the Chromium reader.
func readFirefoxProfile(ctx context.Context, prof Profile, domain string, includeExpired bool) ([]Cookie, SourceReport, []string) {
	rep := SourceReport{Browser: BrowserFirefox, Profile: prof.Name}

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

	rows, err := firefoxQueryRows(ctx, db, domain)
	if err != nil {
		rep.Failure, rep.Err = FailureLocked, err
		return nil, rep, nil
	}

	var out []Cookie
	now := time.Now().Unix()
	for _, r := range rows {
		if r.host == "" || r.name == "" {
			continue
		}
		if r.value == "" {
			rep.Dropped++
			continue
		}
		if !includeExpired && r.expiry > 0 && r.expiry < now {
			continue
		}
		path := r.path
		if path == "" {
			path = "/"
		}
		out = append(out, Cookie{
			Domain:   r.host,
			Name:     r.name,
			Value:    r.value,
			Path:     path,
			Expiry:   r.expiry,
			Secure:   r.secure,
			HTTPOnly: r.httpOnly,
			Source:   Source{Browser: BrowserFirefox, Profile: prof.Name, StorePath: prof.StorePath},
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
	return out, rep, nil
}

type firefoxRow struct {
	host     string
	name     string
	value    string
	path     string
	expiry   int64
	secure   bool
	httpOnly bool
}

func firefoxQueryRows(ctx context.Context, db *sql.DB, domain string) ([]firefoxRow, error) {
	where, args := domainSuffixClause("host", domain)
	query := strings.Join([]string{
		`SELECT host, name, value, path, expiry, isSecure, isHttpOnly`,
		`FROM moz_cookies`,
		`WHERE (` + where + `)`,
		`ORDER BY host, name, expiry DESC`,
	}, " ")

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []firefoxRow
	for rows.Next() {
		var r firefoxRow
		var expiry sql.NullInt64
		var secure sql.NullInt64
		var httpOnly sql.NullInt64

		if err := rows.Scan(&r.host, &r.name, &r.value, &r.path, &expiry, &secure, &httpOnly); err != nil {
			return nil, err
		}
		if expiry.Valid {
			r.expiry = expiry.Int64
		}
		r.secure = secure.Valid && secure.Int64 == 1
		r.httpOnly = httpOnly.Valid && httpOnly.Int64 == 1

		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
