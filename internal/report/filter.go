package report

import "github.com/palantir/asana-mailer/internal/asana"

// FilterProject contracts a project tree to the given filters and returns a
// new tree; the input is never mutated. Order of operations: section-name
// filter (when non-empty), then tag filter (when non-empty), then an
// unconditional prune of sections left with zero tasks. The operations
// commute, so the order only fixes the work done, not the result.
//
// A task passes the tag filter iff its tag set is a superset of the required
// set; extra tags are permitted.
func FilterProject(p Project, sectionFilters, tagFilters StringSet) Project {
	out := p
	out.Sections = nil

	for _, sec := range p.Sections {
		if len(sectionFilters) > 0 && !sectionFilters[sec.Name] {
			continue
		}

		tasks := sec.Tasks
		if len(tagFilters) > 0 {
			tasks = nil
			for _, task := range sec.Tasks {
				if HasAllTags(task, tagFilters) {
					tasks = append(tasks, task)
				}
			}
		}

		// Empty sections are always pruned, filters or not.
		if len(tasks) == 0 {
			continue
		}
		out.Sections = append(out.Sections, Section{Name: sec.Name, Tasks: tasks})
	}

	return out
}

// HasAllTags reports whether the task carries every tag in required.
func HasAllTags(t Task, required StringSet) bool {
	if len(required) == 0 {
		return true
	}
	have := make(StringSet, len(t.Tags))
	for _, tag := range t.Tags {
		have[tag] = true
	}
	for tag := range required {
		if !have[tag] {
			return false
		}
	}
	return true
}

// NeedsComments mirrors FilterProject's decision for a single raw record so
// the assembler can skip story fetches for tasks the filters are going to
// drop anyway. currentSection is the section the record will land in
// (MiscSectionName before any marker has been seen). The skip must be
// result-identical to fetching everything and filtering afterwards.
func NeedsComments(rec asana.Task, currentSection string, sectionFilters, tagFilters StringSet) bool {
	if len(sectionFilters) > 0 && !sectionFilters[currentSection] {
		return false
	}
	if len(tagFilters) > 0 {
		have := make(StringSet, len(rec.Tags))
		for _, tag := range rec.Tags {
			have[tag.Name] = true
		}
		for tag := range tagFilters {
			if !have[tag] {
				return false
			}
		}
	}
	return true
}
