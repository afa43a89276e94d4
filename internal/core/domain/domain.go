// Package domain holds the data model shared across the merge pipeline.
//
// A Note is an ordered sequence of headered sections, each section an ordered
// sequence of bullet strings. A merge run clusters semantically equivalent
// headers, deduplicates the bullets underneath, and keeps a provenance record
// for every source item that was absorbed or displaced along the way.
package domain

// Note is a single source document, identified by its numeric suffix.
// Notes are processed in ascending NoteNum order.
type Note struct {
	NoteNum int
	Headers []Header
}

// Header is one section of a note. ID is assigned in a single pass across
// all notes in ingest order and is stable within a run.
type Header struct {
	ID      int
	NoteNum int
	Name    string
	Bullets []string
}

// RetainedBullet is a bullet selected as the canonical representative of its
// equivalence class. Text is the source bullet with trailing periods stripped.
type RetainedBullet struct {
	NoteNum    int
	BulletIdx  int
	Text       string
	AvgWordLen float64
}

// BulletConflict records a source bullet that was judged equivalent to a
// retained bullet and discarded or displaced.
type BulletConflict struct {
	NoteID       int     `json:"note_id"`
	BulletID     int     `json:"bullet_id"`
	Text         string  `json:"text"`
	Similarity   float32 `json:"similarity"`
	OverlapRatio float64 `json:"overlap_ratio"`
}

// BulletRecord is the provenance entry for one retained bullet. Conflicts is
// flat: a displaced bullet hands its conflict list to its replacement, so
// records never nest.
type BulletRecord struct {
	NoteID    int              `json:"note_id"`
	BulletID  int              `json:"bullet_id"`
	Text      string           `json:"text"`
	Conflicts []BulletConflict `json:"conflicts"`
}

// HeaderConflict records a non-accepted member of a header cluster.
type HeaderConflict struct {
	NoteID       int     `json:"note_id"`
	HeaderID     int     `json:"header_id"`
	HeaderName   string  `json:"header_name"`
	Similarity   float32 `json:"similarity"`
	OverlapRatio float64 `json:"overlap_ratio"`
}

// HeaderCluster is an equivalence class of headers. Accepted is the member
// with the smallest header ID (first seen wins); every other member appears
// in Conflicts.
type HeaderCluster struct {
	Accepted  Header
	Members   []Header
	Conflicts []HeaderConflict
}
