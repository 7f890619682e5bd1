package report

import (
	"github.com/palantir/asana-mailer/internal/asana"
)

// BuildSections partitions an ordered task record sequence into sections in
// a single scan. A marker record starts a new section named after the marker
// text (colon retained); every other record is parsed and appended to the
// current section. Tasks seen before the first marker accumulate in the
// synthetic Misc section, which is appended at the end iff it is non-empty
// and not already the last section appended.
//
// Non-Misc sections with no tasks never appear in the output, so consecutive
// markers produce nothing for the empty ones.
//
// comments maps task gid to that task's selected comments; tasks absent from
// the map get none.
func BuildSections(recs []asana.Task, comments map[string][]Comment) ([]Section, error) {
	var out []Section

	misc := Section{Name: MiscSectionName}
	current := &misc
	inMisc := true

	for _, rec := range recs {
		if IsSectionMarker(rec.Name) {
			if !inMisc && len(current.Tasks) > 0 {
				out = append(out, *current)
			}
			current = &Section{Name: rec.Name}
			inMisc = false
			continue
		}

		task, err := ParseTask(rec, comments[rec.GID])
		if err != nil {
			return nil, err
		}
		current.Tasks = append(current.Tasks, task)
	}

	if len(current.Tasks) > 0 {
		out = append(out, *current)
	}
	// Misc goes last, unless the scan ended inside it (already appended above).
	if len(misc.Tasks) > 0 && !inMisc {
		out = append(out, misc)
	}

	return out, nil
}
