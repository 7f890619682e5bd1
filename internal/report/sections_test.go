package report

import (
	"testing"

	"github.com/palantir/asana-mailer/internal/asana"
)

func rec(name string, tags ...string) asana.Task {
	t := asana.Task{GID: "gid-" + name, Name: name}
	for _, tag := range tags {
		t.Tags = append(t.Tags, asana.Tag{Name: tag})
	}
	return t
}

func sectionNames(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

func TestBuildSectionsBasic(t *testing.T) {
	recs := []asana.Task{
		rec("Section A:"),
		rec("T1"),
		rec("T2"),
		rec("Section B:"),
		rec("T3"),
	}

	sections, err := BuildSections(recs, nil)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %v", len(sections), sectionNames(sections))
	}
	if sections[0].Name != "Section A:" || sections[1].Name != "Section B:" {
		t.Errorf("section order = %v, want [Section A: Section B:]", sectionNames(sections))
	}
	if len(sections[0].Tasks) != 2 {
		t.Errorf("Section A: has %d tasks, want 2", len(sections[0].Tasks))
	}
	if len(sections[1].Tasks) != 1 || sections[1].Tasks[0].Name != "T3" {
		t.Errorf("Section B: tasks = %+v, want [T3]", sections[1].Tasks)
	}
}

func TestBuildSectionsMarkersNeverBecomeTasks(t *testing.T) {
	recs := []asana.Task{
		rec("Section A:"),
		rec("T1"),
	}

	sections, err := BuildSections(recs, nil)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}

	for _, sec := range sections {
		for _, task := range sec.Tasks {
			if IsSectionMarker(task.Name) {
				t.Errorf("marker %q appeared as a task", task.Name)
			}
		}
	}
}

func TestBuildSectionsNoEmptySections(t *testing.T) {
	// Consecutive markers with nothing between them produce no sections.
	recs := []asana.Task{
		rec("Empty A:"),
		rec("Empty B:"),
		rec("Full:"),
		rec("T1"),
		rec("Empty C:"),
	}

	sections, err := BuildSections(recs, nil)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}

	if len(sections) != 1 || sections[0].Name != "Full:" {
		t.Fatalf("sections = %v, want [Full:]", sectionNames(sections))
	}
	for _, sec := range sections {
		if len(sec.Tasks) == 0 {
			t.Errorf("empty section %q in output", sec.Name)
		}
	}
}

func TestBuildSectionsMiscCollectsLeadingTasks(t *testing.T) {
	recs := []asana.Task{
		rec("T0"),
		rec("Section A:"),
		rec("T1"),
	}

	sections, err := BuildSections(recs, nil)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}

	// Misc goes last even though its tasks were seen first.
	want := []string{"Section A:", MiscSectionName}
	got := sectionNames(sections)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	if sections[1].Tasks[0].Name != "T0" {
		t.Errorf("Misc task = %q, want T0", sections[1].Tasks[0].Name)
	}
}

func TestBuildSectionsOnlyMisc(t *testing.T) {
	// No markers at all: Misc is the terminal section and must appear
	// exactly once.
	recs := []asana.Task{
		rec("T0"),
		rec("T1"),
	}

	sections, err := BuildSections(recs, nil)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}

	if len(sections) != 1 {
		t.Fatalf("expected exactly 1 section, got %v", sectionNames(sections))
	}
	if sections[0].Name != MiscSectionName {
		t.Errorf("section = %q, want %q", sections[0].Name, MiscSectionName)
	}
	if len(sections[0].Tasks) != 2 {
		t.Errorf("Misc has %d tasks, want 2", len(sections[0].Tasks))
	}
}

func TestBuildSectionsMarkersOnly(t *testing.T) {
	recs := []asana.Task{
		rec("Section A:"),
		rec("Section B:"),
	}

	sections, err := BuildSections(recs, nil)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("expected no sections, got %v", sectionNames(sections))
	}
}

func TestBuildSectionsEmptyInput(t *testing.T) {
	sections, err := BuildSections(nil, nil)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("expected no sections for empty input, got %d", len(sections))
	}
}

func TestBuildSectionsAttachesComments(t *testing.T) {
	recs := []asana.Task{
		rec("Section A:"),
		rec("T1"),
		rec("T2"),
	}
	comments := map[string][]Comment{
		"gid-T1": {{Text: "hello"}},
	}

	sections, err := BuildSections(recs, comments)
	if err != nil {
		t.Fatalf("build sections: %v", err)
	}

	tasks := sections[0].Tasks
	if len(tasks[0].Comments) != 1 || tasks[0].Comments[0].Text != "hello" {
		t.Errorf("T1 comments = %+v, want [hello]", tasks[0].Comments)
	}
	if tasks[1].Comments != nil {
		t.Errorf("T2 comments = %+v, want nil", tasks[1].Comments)
	}
}

func TestBuildSectionsPropagatesParseError(t *testing.T) {
	bad := asana.Task{GID: "x", Name: "Broken", Completed: true, CompletedAt: "garbage"}
	if _, err := BuildSections([]asana.Task{bad}, nil); err == nil {
		t.Fatal("expected parse error to propagate")
	}
}
