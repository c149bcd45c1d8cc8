package storage

import "testing"

func TestObjectName(t *testing.T) {
	got := ObjectName("folder", "entry", 3, "/data/folder/entry/3/summary.md")
	if got != "folder/entry/3/summary.md" {
		t.Errorf("ObjectName() = %q", got)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"summary.md":        "text/markdown; charset=utf-8",
		"transcription.txt": "text/plain; charset=utf-8",
		"summary.docx":      "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"blob":              "application/octet-stream",
	}
	for in, want := range tests {
		if got := ContentType(in); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", in, got, want)
		}
	}
}
