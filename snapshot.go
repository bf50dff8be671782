package ytcookies

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver (pure Go).
)

// snapshotStore copies a cookie database to a temp dir so a running browser
// holding the live file never blocks the read. The returned cleanup removes
// the copy and must run on every exit path.
func snapshotStore(src string) (snapshotPath string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "ytcookies-store-")
	if err != nil {
		return "", nil, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	target := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, target); err != nil {
		cleanup()
		return "", nil, err
	}

	// If WAL mode is enabled, recent writes may live in sidecars.
	_ = copyFileIfExists(src+"-wal", target+"-wal")
	_ = copyFileIfExists(src+"-shm", target+"-shm")

	return target, cleanup, nil
}

func openStore(ctx context.Context, snapshotPath string) (*sql.DB, error) {
	dsn := "file:" + filepath.ToSlash(snapshotPath) + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// snapshotFailureKind maps a snapshot/open error to the source taxonomy:
// a missing store is NotFound, everything else (permissions, a browser holding
// the lock, a corrupt file) is Locked.
func snapshotFailureKind(err error) FailureKind {
	if errors.Is(err, os.ErrNotExist) {
		return FailureNotFound
	}
	return FailureLocked
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func copyFileIfExists(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return copyFile(src, dst)
}
