package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// evaluateCounts checks the assertions that read the in-memory store.
func (h *Harness) evaluateCounts(assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var got int
		switch a.Type {
		case AssertUserCount:
			got = len(h.store.Users())
		case AssertPublicCount:
			got = len(h.store.PublicRoutines())
		case AssertRoutineCount:
			id, err := h.user(a.User)
			if err != nil {
				errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
				continue
			}
			list, ok := h.store.Routines(id)
			if !ok {
				errs = append(errs, fmt.Sprintf("assertions[%d]: user %q has no routine list", i, a.User))
				continue
			}
			got = len(list)
		default:
			continue
		}
		if got != a.Count {
			errs = append(errs, fmt.Sprintf("assertions[%d] %s: expected %d, got %d", i, a.Type, a.Count, got))
		}
	}
	return errs
}

// evaluateDocuments checks the assertions that read flushed documents.
func (h *Harness) evaluateDocuments(assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if a.Type != AssertDocumentContains {
			continue
		}
		data, err := os.ReadFile(filepath.Join(h.dir, a.Document))
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
			continue
		}
		if !strings.Contains(string(data), a.Text) {
			errs = append(errs, fmt.Sprintf("assertions[%d] %s: %s does not contain %q", i, a.Type, a.Document, a.Text))
		}
	}
	return errs
}
