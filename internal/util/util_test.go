package util

import (
	"strings"
	"testing"
	"time"
)

func TestContentHash(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := ContentHash(nil); got != empty {
		t.Errorf("Expected %s, got %s", empty, got)
	}
	if ContentHashString("<p>a</p>") != ContentHash([]byte("<p>a</p>")) {
		t.Error("Expected string and byte hashes to agree")
	}
	if ContentHashString("<p>a</p>") == ContentHashString("<p>b</p>") {
		t.Error("Expected different content to hash differently")
	}
}

func TestGetFrontMatter(t *testing.T) {
	testCases := []struct {
		name         string
		markdown     []byte
		expectError  bool
		expectedName string
		expectedDate time.Time
	}{
		{
			name: "Valid Front Matter",
			markdown: []byte(`%%%
name = "Spring sale"
date = 2025-01-01 00:00:00Z
%%%
# Content`),
			expectedName: "Spring sale",
			expectedDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "No Front Matter",
			markdown: []byte(`# Just Content
No front matter here.`),
			expectError: true,
		},
		{
			name:        "Empty File",
			markdown:    []byte(""),
			expectError: true,
		},
		{
			name: "Content Before Front Matter",
			markdown: []byte(`
# This should be ignored
%%%
name = "Spring sale"
%%%
# Content`),
			expectError: true,
		},
		{
			name: "Extra Whitespace",
			markdown: []byte(`


%%%

name = "Spring sale"

%%%
# Content`),
			expectedName: "Spring sale",
		},
		{
			name: "Malformed Front Matter",
			markdown: []byte(`%%%
name = "Incomplete
# Content`),
			expectError: true,
		},
		{
			name:        "Only Delimiters",
			markdown:    []byte("%%% %%%"),
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			meta, err := GetFrontMatter(tc.markdown)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				}
				if meta != nil {
					t.Errorf("Expected nil meta when error occurs, but got %+v", meta)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, but got: %v", err)
			}
			if meta.Name != tc.expectedName {
				t.Errorf("Expected name '%s', but got '%s'", tc.expectedName, meta.Name)
			}
			if !meta.Date.Equal(tc.expectedDate) {
				t.Errorf("Expected date '%v', but got '%v'", tc.expectedDate, meta.Date)
			}
		})
	}
}

func TestSplitFrontMatter(t *testing.T) {
	t.Run("with front matter", func(t *testing.T) {
		meta, body, err := SplitFrontMatter([]byte("%%%\nname = \"Weekly\"\npreview_image = \"https://cdn/p.png\"\n%%%\n# Hello\n"))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if meta.Name != "Weekly" || meta.PreviewImage != "https://cdn/p.png" {
			t.Errorf("Unexpected meta %+v", meta)
		}
		if strings.TrimSpace(string(body)) != "# Hello" {
			t.Errorf("Expected body '# Hello', got %q", body)
		}
	})

	t.Run("without front matter", func(t *testing.T) {
		meta, body, err := SplitFrontMatter([]byte("# Hello"))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if meta.Name != "" {
			t.Errorf("Expected empty meta, got %+v", meta)
		}
		if string(body) != "# Hello" {
			t.Errorf("Expected untouched body, got %q", body)
		}
	})

	t.Run("broken front matter", func(t *testing.T) {
		if _, _, err := SplitFrontMatter([]byte("%%%\nname = \n")); err == nil {
			t.Error("Expected error for unterminated front matter")
		}
	})
}

func TestDecodeMeta(t *testing.T) {
	meta, err := DecodeMeta([]byte(`id = "c-42"
name = "Black Friday"`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if meta.ID != "c-42" || meta.Name != "Black Friday" {
		t.Errorf("Unexpected meta %+v", meta)
	}

	if _, err := DecodeMeta([]byte("name = ")); err == nil {
		t.Error("Expected decode error")
	}
}
