// Package export produces consumer-facing exports of the icon library: a
// JSON document for direct embedding in frontend projects, raw SVG file
// sets, and a ZIP bundle combining both.
package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"

	"encoding/json/jsontext"
	"encoding/json/v2"

	"github.com/iconvault/iconvault/internal/domain"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/store"
	"github.com/iconvault/iconvault/internal/svg"
)

// LibraryName and LibraryVersion identify the export document format.
const (
	LibraryName    = "icon-library"
	LibraryVersion = "1.0.0"
)

const fallbackColor = "#000000"

// Library is the consumer JSON document. Icons are keyed by display name;
// that is the lookup key frontend components use.
type Library struct {
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	Description string           `json:"description"`
	Icons       map[string]Entry `json:"icons"`
}

// Entry is one exported icon. Single-color entries carry Path/Color;
// multi-color entries carry Paths/Colors. Width and height come from the
// source viewBox.
type Entry struct {
	Path       string            `json:"path,omitzero"`
	Color      string            `json:"color,omitzero"`
	Paths      []ColorPath       `json:"paths,omitzero"`
	Colors     map[string]string `json:"colors,omitzero"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Multicolor bool              `json:"multicolor"`
}

// ColorPath is one path of a multi-color entry. ColorID indexes into the
// entry's Colors map so consumers can re-theme per slot.
type ColorPath struct {
	D       string `json:"d"`
	ColorID string `json:"colorId"`
	Color   string `json:"color"`
}

// File is a named raw export blob.
type File struct {
	Name    string
	Content []byte
}

// Manager builds exports from the icon store.
type Manager struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates an export manager.
func New(st *store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{store: st, logger: logger}
}

// JSON builds the consumer document for the given icons. Unknown IDs and
// icons whose SVG content is unavailable are skipped with a warning; the
// export never fails because of a single bad icon.
func (m *Manager) JSON(ctx context.Context, iconIDs []string) (*Library, error) {
	lib := &Library{
		Name:        LibraryName,
		Version:     LibraryVersion,
		Description: "SVG icon library",
		Icons:       make(map[string]Entry, len(iconIDs)),
	}

	for _, iconID := range iconIDs {
		icon, err := m.store.Icons.GetByID(iconID)
		if err != nil {
			m.logger.Warn("skipping unknown icon in export", "id", iconID)
			continue
		}
		content, err := m.store.Icons.SVG(ctx, iconID)
		if err != nil {
			m.logger.Warn("skipping icon with unavailable content", "id", iconID, "error", err)
			continue
		}
		doc, err := svg.Parse(content)
		if err != nil {
			m.logger.Warn("skipping icon with unparsable content", "id", iconID, "error", err)
			continue
		}
		lib.Icons[icon.Name] = buildEntry(&icon, doc)
	}
	return lib, nil
}

// JSONBytes renders the consumer document pretty-printed.
func (m *Manager) JSONBytes(ctx context.Context, iconIDs []string) ([]byte, error) {
	lib, err := m.JSON(ctx, iconIDs)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(lib, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Internal("marshal export document").WithCause(err)
	}
	return data, nil
}

func buildEntry(icon *domain.Icon, doc *svg.Document) Entry {
	width, height := doc.ViewBox()
	paths := doc.Paths()

	if icon.Multicolor && len(icon.Colors) > 1 {
		colorPaths := make([]ColorPath, 0, len(paths))
		for i, p := range paths {
			fill := p.Fill
			if fill == "" {
				fill = fallbackColor
			}
			colorPaths = append(colorPaths, ColorPath{
				D:       p.D,
				ColorID: fmt.Sprintf("color%d", i+1),
				Color:   fill,
			})
		}
		colorMap := make(map[string]string, len(icon.Colors))
		for i, c := range icon.Colors {
			colorMap[fmt.Sprintf("color%d", i+1)] = c
		}
		return Entry{
			Paths:      colorPaths,
			Colors:     colorMap,
			Width:      width,
			Height:     height,
			Multicolor: true,
		}
	}

	joined := ""
	for i, p := range paths {
		if i > 0 {
			joined += " "
		}
		joined += p.D
	}
	color := fallbackColor
	if len(icon.Colors) > 0 {
		color = icon.Colors[0]
	}
	return Entry{
		Path:       joined,
		Color:      color,
		Width:      width,
		Height:     height,
		Multicolor: false,
	}
}

// SVGFiles returns the raw SVG content of the given icons, named by display
// name. Unknown or content-unavailable icons are skipped with a warning.
func (m *Manager) SVGFiles(ctx context.Context, iconIDs []string) ([]File, error) {
	out := make([]File, 0, len(iconIDs))
	for _, iconID := range iconIDs {
		icon, err := m.store.Icons.GetByID(iconID)
		if err != nil {
			m.logger.Warn("skipping unknown icon in export", "id", iconID)
			continue
		}
		content, err := m.store.Icons.SVG(ctx, iconID)
		if err != nil {
			m.logger.Warn("skipping icon with unavailable content", "id", iconID, "error", err)
			continue
		}
		out = append(out, File{Name: icon.Name + ".svg", Content: content})
	}
	return out, nil
}

// Zip writes a bundle to w: the consumer JSON document as
// icon-library.json, and the raw SVG files under svg/.
func (m *Manager) Zip(ctx context.Context, w io.Writer, iconIDs []string, includeJSON, includeSVG bool) error {
	zw := zip.NewWriter(w)

	if includeJSON {
		data, err := m.JSONBytes(ctx, iconIDs)
		if err != nil {
			return err
		}
		f, err := zw.Create("icon-library.json")
		if err != nil {
			return errors.Storage("create zip entry").WithCause(err)
		}
		if _, err := f.Write(data); err != nil {
			return errors.Storage("write zip entry").WithCause(err)
		}
	}

	if includeSVG {
		files, err := m.SVGFiles(ctx, iconIDs)
		if err != nil {
			return err
		}
		for _, file := range files {
			f, err := zw.Create("svg/" + file.Name)
			if err != nil {
				return errors.Storage("create zip entry").WithCause(err)
			}
			if _, err := f.Write(file.Content); err != nil {
				return errors.Storage("write zip entry").WithCause(err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Storage("finalize zip").WithCause(err)
	}
	return nil
}
