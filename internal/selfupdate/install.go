package selfupdate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Stage identifies a step of Update.
type Stage string

const (
	StageCheck    Stage = "check"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageApply    Stage = "apply"
	StageDone     Stage = "done"
)

// Progress is reported before every stage of Update.
type Progress struct {
	Stage   Stage
	Message string
}

// Update downloads the target release, or the latest one when target is
// empty, verifies it against the published checksums and swaps it in for
// the running executable.
func (c *Checker) Update(ctx context.Context, current, target string, progress func(Progress)) error {
	if progress == nil {
		progress = func(Progress) {}
	}
	if current == DevVersion {
		return ErrDevBuild
	}

	tag := target
	if tag == "" {
		progress(Progress{StageCheck, "Checking for the latest version..."})
		res, err := c.Check(ctx, current)
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !res.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = res.LatestVersion
	}

	asset, err := assetName()
	if err != nil {
		return err
	}

	progress(Progress{StageDownload, fmt.Sprintf("Downloading %s...", tag)})
	archive, err := c.download(ctx, tag, asset)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	progress(Progress{StageVerify, "Verifying checksum..."})
	sums, err := c.download(ctx, tag, checksumsFile)
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(sums)[asset]
	if !ok {
		return fmt.Errorf("%w: no entry for %s in %s", ErrChecksum, asset, checksumsFile)
	}
	if err := verifyChecksum(archive, want); err != nil {
		return err
	}

	progress(Progress{StageExtract, "Extracting binary..."})
	bin, err := extractBinary(archive, asset)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	progress(Progress{StageApply, "Installing..."})
	exe, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if err := replaceFile(exe, bin); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	c.logger.Info("binary updated", "from", current, "to", tag, "path", exe)
	progress(Progress{StageDone, fmt.Sprintf("Updated to %s", tag)})
	return nil
}

// replaceFile atomically replaces target with data, keeping its mode.
// The staged copy is re-hashed before the rename.
func replaceFile(target string, data []byte) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-update-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	staged, err := os.ReadFile(tmpName)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	if sha256Hex(staged) != sha256Hex(data) {
		return fmt.Errorf("%w: staged file changed after write", ErrChecksum)
	}

	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
