package infinote

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"sort"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// BackupVersion is the current backup file format version.
const BackupVersion = 1

// ErrBadBackup reports a backup file that cannot be imported.
var ErrBadBackup = errors.New("infinote: invalid backup file")

// Backup is the interchange envelope for a whole document: a versioned,
// timestamped JSON file the user can move between machines.
type Backup struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedTimestamp"`
	Document   *Document `json:"document"`
}

// ExportBackup serializes the document into a versioned backup envelope.
func ExportBackup(doc *Document, now time.Time) ([]byte, error) {
	b := Backup{Version: BackupVersion, ExportedAt: now, Document: doc}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// ImportBackup parses and validates a backup envelope. A file missing the
// version field, carrying an unknown version, or missing the document is
// rejected with ErrBadBackup; the current document is left untouched by
// callers on error.
func ImportBackup(data []byte) (*Document, error) {
	var raw struct {
		Version  *int            `json:"version"`
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBackup, err)
	}
	if raw.Version == nil {
		return nil, fmt.Errorf("%w: missing version", ErrBadBackup)
	}
	if *raw.Version != BackupVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadBackup, *raw.Version)
	}
	if len(raw.Document) == 0 || string(raw.Document) == "null" {
		return nil, fmt.Errorf("%w: missing document", ErrBadBackup)
	}
	var doc Document
	if err := json.Unmarshal(raw.Document, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBackup, err)
	}
	if doc.Notes == nil {
		doc.Notes = []*Note{}
	}
	if doc.Viewport.Zoom == 0 {
		doc.Viewport.Zoom = 1.0
	}
	return &doc, nil
}

// WriteBackupFile exports the document to a JSON file at path.
func WriteBackupFile(doc *Document, path string, now time.Time) error {
	data, err := ExportBackup(doc, now)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup %s: %w", path, err)
	}
	return nil
}

// ReadBackupFile imports a document from a JSON backup file at path.
func ReadBackupFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", path, err)
	}
	return ImportBackup(data)
}

// --- Clipboard ---

// CopyNoteText places a note's content on the system clipboard.
func CopyNoteText(doc *Document, id string) error {
	n := doc.Note(id)
	if n == nil {
		return fmt.Errorf("copy: no note %q", id)
	}
	return clipboard.WriteAll(n.Content)
}

// PasteNoteText replaces a note's content with the system clipboard.
func PasteNoteText(doc *Document, id string) error {
	n := doc.Note(id)
	if n == nil {
		return fmt.Errorf("paste: no note %q", id)
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return err
	}
	n.Content = text
	return nil
}

// --- PNG snapshot ---

const (
	snapshotScale    = 0.5 // world units to pixels
	snapshotPadding  = 40.0
	snapshotFontSize = 13.0
	snapshotTextPad  = 8.0
)

// RenderSnapshot rasterizes every note into a PNG image: notes drawn back to
// front in z-order on a white background, with their content wrapped inside.
// The image covers the note bounding box plus padding regardless of the live
// viewport.
func RenderSnapshot(doc *Document) (*gg.Context, error) {
	bounds, ok := doc.NotesBounds()
	if !ok {
		return nil, errors.New("snapshot: document has no notes")
	}
	bounds.X -= snapshotPadding
	bounds.Y -= snapshotPadding
	bounds.Width += 2 * snapshotPadding
	bounds.Height += 2 * snapshotPadding

	dc := gg.NewContext(
		int(bounds.Width*snapshotScale),
		int(bounds.Height*snapshotScale),
	)
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    snapshotFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	notes := make([]*Note, len(doc.Notes))
	copy(notes, doc.Notes)
	sort.Slice(notes, func(i, j int) bool { return notes[i].ZIndex < notes[j].ZIndex })

	for _, n := range notes {
		x := (n.Position.X - bounds.X) * snapshotScale
		y := (n.Position.Y - bounds.Y) * snapshotScale
		w := n.Size.X * snapshotScale
		h := n.Size.Y * snapshotScale

		c := DefaultColorIndex
		if n.Color >= 0 && n.Color < len(Palette) {
			c = n.Color
		}
		dc.SetColor(Palette[c].RGBA())
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()

		dc.SetLineWidth(1.0)
		dc.SetColor(color.Gray{Y: 0x88})
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()

		if n.Content != "" {
			dc.SetColor(color.Black)
			dc.DrawStringWrapped(n.Content,
				x+snapshotTextPad, y+snapshotTextPad,
				0, 0, w-2*snapshotTextPad, 1.3, gg.AlignLeft)
		}
	}
	return dc, nil
}

// WriteSnapshotPNG renders the document and writes the PNG to path.
func WriteSnapshotPNG(doc *Document, path string) error {
	dc, err := RenderSnapshot(doc)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}
