package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"
)

// TestTopics keeps the documentation in sync with itself: every topic listed
// in readme.md must load, and every .md file must be listed in readme.md.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}
	if len(topicsInReadme) == 0 {
		t.Fatal("readme.md lists no topics")
	}

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatalf("failed to glob *.md: %v", err)
	}
	for _, f := range files {
		base := strings.TrimSuffix(filepath.Base(f), ".md")
		if base == "readme" {
			continue
		}
		if !slices.Contains(topicsInReadme, base) {
			t.Errorf("topic %q is not listed in readme.md", base)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics: %v", err)
	}
	if !slices.Equal(all, slices.Sorted(slices.Values(topicsInReadme))) {
		t.Errorf("GetAllTopics = %v, readme lists %v", all, topicsInReadme)
	}
}

func TestGetTopic_Unknown(t *testing.T) {
	if _, err := GetTopic("nope"); err == nil {
		t.Error("GetTopic succeeded on an unknown topic")
	}
}

func TestGetTopic_Star(t *testing.T) {
	content, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*): %v", err)
	}
	for _, want := range []string{"# Dates", "# The Book File", "# Investments"} {
		if !strings.Contains(content, want) {
			t.Errorf("expanded topics are missing %q", want)
		}
	}
}
