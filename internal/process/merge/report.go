package merge

import (
	"fmt"

	"github.com/notefuse/notefuse/internal/core/domain"
)

// Report is the structured provenance document emitted next to the merged
// text. It lists, per accepted header, the headers that were folded into it
// and every retained bullet with the conflicts it absorbed.
type Report struct {
	Headers []ReportHeader `json:"headers"`
}

// ReportHeader describes one merged header cluster.
type ReportHeader struct {
	HeaderID           int                     `json:"header_id"`
	AcceptedHeaderName string                  `json:"accepted_header_name"`
	NoteID             int                     `json:"note_id"`
	ConflictingHeaders []domain.HeaderConflict `json:"conflicting_headers"`
	Bullets            []ReportBullet          `json:"bullets"`
}

// ReportBullet describes one retained bullet and its conflicts.
type ReportBullet struct {
	BulletID           string                  `json:"bullet_id"`
	AcceptedBulletText string                  `json:"accepted_bullet_text"`
	ConflictingBullets []domain.BulletConflict `json:"conflicting_bullets"`
}

// BuildReport converts a merge result into the report shape.
func (r *Result) BuildReport() Report {
	report := Report{Headers: make([]ReportHeader, 0, len(r.Headers))}

	for _, h := range r.Headers {
		rh := ReportHeader{
			HeaderID:           h.HeaderID,
			AcceptedHeaderName: h.Name,
			NoteID:             h.NoteID,
			ConflictingHeaders: h.Conflicts,
			Bullets:            make([]ReportBullet, 0, len(h.Bullets)),
		}

		if rh.ConflictingHeaders == nil {
			rh.ConflictingHeaders = []domain.HeaderConflict{}
		}

		for _, b := range h.Bullets {
			record, ok := h.Records[b.Text]
			if !ok {
				// A retained bullet always has a record; losing one would be
				// an internal inconsistency in the deduplicator.
				continue
			}

			conflicts := record.Conflicts
			if conflicts == nil {
				conflicts = []domain.BulletConflict{}
			}

			rh.Bullets = append(rh.Bullets, ReportBullet{
				BulletID:           fmt.Sprintf("%d_%d", record.NoteID, record.BulletID),
				AcceptedBulletText: record.Text,
				ConflictingBullets: conflicts,
			})
		}

		report.Headers = append(report.Headers, rh)
	}

	return report
}
