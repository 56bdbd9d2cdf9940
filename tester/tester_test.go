package tester

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestCase(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

const passingCase = `A node and a link parse into the expected tree.
---
node a
a -> "sink"
---
(model
    (element (kw_node "node") (id "a"))
    (link
        (endpoint (id "a"))
        (arrow "->")
        (endpoint (string "\"sink\""))))
`

const wildcardCase = `The wildcard matches any statement kind.
---
node a
---
(model (_ (kw_node "") (id "")))
`

const failingCase = `This expectation does not match the parse result.
---
node a
---
(model (link))
`

const recoveryCase = `A statement starting with an arrow is consumed by recovery.
---
-> b
---
(model (error))
`

func TestTester_Run(t *testing.T) {
	dir := t.TempDir()
	writeTestCase(t, dir, "pass.txt", passingCase)
	writeTestCase(t, dir, "wildcard.txt", wildcardCase)
	writeTestCase(t, dir, "recovery.txt", recoveryCase)
	failPath := writeTestCase(t, dir, "fail.txt", failingCase)

	cs := ListTestCases(dir)
	if len(cs) != 4 {
		t.Fatalf("unexpected case count; want: 4, got: %v", len(cs))
	}
	for _, c := range cs {
		if c.Error != nil {
			t.Fatalf("unexpected error in %v: %v", c.FilePath, c.Error)
		}
	}

	rs := (&Tester{Cases: cs}).Run()
	if len(rs) != 4 {
		t.Fatalf("unexpected result count; want: 4, got: %v", len(rs))
	}
	for _, r := range rs {
		if r.TestCasePath == failPath {
			if r.Error == nil {
				t.Fatalf("%v must fail", r.TestCasePath)
			}
			if len(r.Diffs) == 0 {
				t.Fatalf("%v must report diffs", r.TestCasePath)
			}
			if !strings.HasPrefix(r.String(), "Failed ") {
				t.Fatalf("unexpected result rendering: %v", r.String())
			}
			continue
		}
		if r.Error != nil {
			t.Fatalf("%v must pass: %v", r.TestCasePath, r)
		}
		if !strings.HasPrefix(r.String(), "Passed ") {
			t.Fatalf("unexpected result rendering: %v", r.String())
		}
	}
}

func TestListTestCases_missingPath(t *testing.T) {
	cs := ListTestCases(filepath.Join(t.TempDir(), "no-such-file"))
	if len(cs) != 1 || cs[0].Error == nil {
		t.Fatalf("a missing path must surface as a case-level error: %+v", cs)
	}
}

func TestListTestCases_brokenCase(t *testing.T) {
	dir := t.TempDir()
	writeTestCase(t, dir, "broken.txt", "only a description")
	cs := ListTestCases(dir)
	if len(cs) != 1 || cs[0].Error == nil {
		t.Fatalf("a broken case must surface as a case-level error: %+v", cs)
	}
}
