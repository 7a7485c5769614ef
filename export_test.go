package infinote

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backupFixture() *Document {
	doc := NewDocument()
	doc.Viewport = ViewportState{Pan: Vec2{-20, 30}, Zoom: 1.5}
	n := doc.CreateNote(Vec2{23, 47}, testTime())
	n.Content = "backed up"
	n.Color = 6
	return doc
}

func TestBackupRoundtrip(t *testing.T) {
	doc := backupFixture()

	data, err := ExportBackup(doc, testTime())
	if err != nil {
		t.Fatal(err)
	}
	got, err := ImportBackup(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Viewport != doc.Viewport {
		t.Errorf("Viewport = %+v, want %+v", got.Viewport, doc.Viewport)
	}
	if len(got.Notes) != 1 || *got.Notes[0] != *doc.Notes[0] {
		t.Errorf("Notes = %+v, want %+v", got.Notes, doc.Notes)
	}
}

func TestBackupEnvelopeFields(t *testing.T) {
	data, err := ExportBackup(backupFixture(), testTime())
	if err != nil {
		t.Fatal(err)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"version", "exportedTimestamp", "document"} {
		if _, ok := env[key]; !ok {
			t.Errorf("envelope missing %q", key)
		}
	}
}

func TestImportRejectsBadBackups(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"missing version", `{"document":{"notes":[]}}`},
		{"unknown version", `{"version":99,"document":{"notes":[]}}`},
		{"missing document", `{"version":1}`},
		{"null document", `{"version":1,"document":null}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ImportBackup([]byte(c.data)); !errors.Is(err, ErrBadBackup) {
				t.Errorf("err = %v, want ErrBadBackup", err)
			}
		})
	}
}

func TestImportNormalizesSparseDocument(t *testing.T) {
	got, err := ImportBackup([]byte(`{"version":1,"document":{}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes == nil {
		t.Error("Notes = nil, want empty slice")
	}
	if got.Viewport.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want defaulted 1.0", got.Viewport.Zoom)
	}
}

func TestBackupFileRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	doc := backupFixture()

	if err := WriteBackupFile(doc, path, testTime()); err != nil {
		t.Fatal(err)
	}
	got, err := ReadBackupFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes[0].Content != "backed up" {
		t.Errorf("Content = %q", got.Notes[0].Content)
	}
}

func TestSnapshotEmptyDocumentFails(t *testing.T) {
	if _, err := RenderSnapshot(NewDocument()); err == nil {
		t.Error("RenderSnapshot(empty) = nil error")
	}
}

func TestSnapshotDimensions(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateNote(Vec2{0, 0}, testTime())
	n.Size = Vec2{400, 200}
	n.Content = "hello"

	dc, err := RenderSnapshot(doc)
	if err != nil {
		t.Fatal(err)
	}
	// Bounding box plus padding on each side, at the snapshot scale.
	wantW := int((400 + 2*snapshotPadding) * snapshotScale)
	wantH := int((200 + 2*snapshotPadding) * snapshotScale)
	if dc.Width() != wantW || dc.Height() != wantH {
		t.Errorf("image = %dx%d, want %dx%d", dc.Width(), dc.Height(), wantW, wantH)
	}
}

func TestWriteSnapshotPNG(t *testing.T) {
	doc := NewDocument()
	doc.CreateNote(Vec2{10, 10}, testTime())
	path := filepath.Join(t.TempDir(), "snap.png")

	if err := WriteSnapshotPNG(doc, path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("snapshot file is empty")
	}
}
