package main

import (
	"testing"

	"github.com/milk9111/perspective/levels"
)

func TestEmbeddedLevelsAreConsistent(t *testing.T) {
	for _, name := range levels.Names() {
		t.Run(name, func(t *testing.T) {
			if problems := checkLevel(name); len(problems) != 0 {
				t.Fatalf("expected no problems, got %v", problems)
			}
		})
	}
}

func TestCheckLevelReportsMissingLevel(t *testing.T) {
	if problems := checkLevel("does_not_exist"); len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}
}
