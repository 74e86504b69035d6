// Package backup creates and restores whole-store archives: every file under
// both storage areas plus a manifest, bundled into a single zip. Restore is
// file-level only; it overwrites same-named files and performs no entity
// merge (dedup is the importer's job).
package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"encoding/json/jsontext"
	"encoding/json/v2"

	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/store"
)

// FormatVersion is the archive format version. Increment major on breaking
// changes.
const FormatVersion = "1.0"

// archiveSuffix marks archives created by this service.
const archiveSuffix = ".iconvault.zip"

// manifestName is the manifest entry inside the archive.
const manifestName = "manifest.json"

// Manifest describes archive contents and metadata.
type Manifest struct {
	Version    string       `json:"version"`
	CreatedAt  time.Time    `json:"created_at"`
	AppVersion string       `json:"app_version"`
	Counts     EntityCounts `json:"counts"`
}

// EntityCounts tracks counts for validation and reporting.
type EntityCounts struct {
	Icons      int `json:"icons"`
	Categories int `json:"categories"`
	Files      int `json:"files"`
}

// Result is the outcome of a completed backup.
type Result struct {
	Path     string
	Size     int64
	Counts   EntityCounts
	Duration time.Duration
	Checksum string
}

// Info describes an archive found in the backup directory.
type Info struct {
	ID        string
	Path      string
	Size      int64
	CreatedAt time.Time
}

// Options configures backup creation.
type Options struct {
	// OutputPath overrides the default timestamped path in the backup dir.
	OutputPath string
}

// Service creates, lists, and restores backups for one store.
type Service struct {
	store     *store.Store
	backend   storage.Backend
	backupDir string
	version   string
	logger    *slog.Logger
}

// New creates a backup service.
func New(st *store.Store, backend storage.Backend, backupDir, version string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:     st,
		backend:   backend,
		backupDir: backupDir,
		version:   version,
		logger:    logger,
	}
}

// Create writes a new archive. The file is written to a temp path and
// renamed on success so a failed backup never leaves a half-written archive
// behind.
func (s *Service) Create(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, errors.Storage("create backup dir").WithCause(err)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		timestamp := time.Now().Format("2006-01-02-150405")
		outputPath = filepath.Join(s.backupDir, fmt.Sprintf("backup-%s%s", timestamp, archiveSuffix))
	}

	s.logger.Info("creating backup", "output", outputPath)

	tmpPath := outputPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, errors.Storage("create backup file").WithCause(err)
	}
	defer os.Remove(tmpPath)
	defer f.Close()

	hash := sha256.New()
	zw := zip.NewWriter(io.MultiWriter(f, hash))

	manifest := Manifest{
		Version:    FormatVersion,
		CreatedAt:  time.Now(),
		AppVersion: s.version,
		Counts: EntityCounts{
			Icons:      len(s.store.Icons.GetAll()),
			Categories: len(s.store.Categories.GetAll()),
		},
	}

	for _, area := range storage.Areas() {
		names, err := s.backend.List(ctx, area)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			content, err := s.backend.Read(ctx, area, name)
			if err != nil {
				return nil, err
			}
			if content == nil {
				continue // vanished between List and Read
			}
			w, err := zw.Create(string(area) + "/" + name)
			if err != nil {
				return nil, errors.Storage("create archive entry").WithCause(err)
			}
			if _, err := w.Write(content); err != nil {
				return nil, errors.Storage("write archive entry").WithCause(err)
			}
			manifest.Counts.Files++
		}
	}

	manifestData, err := json.Marshal(manifest, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Internal("marshal manifest").WithCause(err)
	}
	w, err := zw.Create(manifestName)
	if err != nil {
		return nil, errors.Storage("create manifest entry").WithCause(err)
	}
	if _, err := w.Write(manifestData); err != nil {
		return nil, errors.Storage("write manifest entry").WithCause(err)
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Storage("finalize archive").WithCause(err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.Storage("close backup file").WithCause(err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return nil, errors.Storage("finalize backup file").WithCause(err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, errors.Storage("stat backup file").WithCause(err)
	}

	result := &Result{
		Path:     outputPath,
		Size:     info.Size(),
		Counts:   manifest.Counts,
		Duration: time.Since(start),
		Checksum: hex.EncodeToString(hash.Sum(nil)),
	}
	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"files", result.Counts.Files,
		"checksum", result.Checksum,
	)
	return result, nil
}

// Restore unpacks an archive into the backend, overwriting same-named files,
// and reloads the entity stores. Entries outside the known areas are
// ignored.
func (s *Service) Restore(ctx context.Context, path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return errors.Storage("open archive").WithCause(err)
	}
	defer zr.Close()

	restored := 0
	for _, file := range zr.File {
		if file.Name == manifestName || file.FileInfo().IsDir() {
			continue
		}
		areaName, entryName, ok := strings.Cut(file.Name, "/")
		if !ok || entryName == "" {
			continue
		}
		area := storage.Area(areaName)
		if !area.Valid() {
			s.logger.Warn("skipping archive entry outside known areas", "entry", file.Name)
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return errors.Storage("open archive entry").WithCause(err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return errors.Storage("read archive entry").WithCause(err)
		}
		if err := s.backend.Save(ctx, area, entryName, content); err != nil {
			return err
		}
		restored++
	}

	if err := s.store.Reload(ctx); err != nil {
		return err
	}

	s.logger.Info("restore complete", "path", path, "files", restored)
	return nil
}

// ReadManifest extracts an archive's manifest without restoring it.
func ReadManifest(path string) (*Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Storage("open archive").WithCause(err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != manifestName {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, errors.Storage("open manifest entry").WithCause(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Storage("read manifest entry").WithCause(err)
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Corrupt("manifest unparsable").WithCause(err)
		}
		return &m, nil
	}
	return nil, errors.NotFound("archive has no manifest")
}

// List returns the archives in the backup directory, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Storage("read backup dir").WithCause(err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			ID:        strings.TrimSuffix(entry.Name(), archiveSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}
