package services_test

import (
	"fmt"
	"strings"
	"testing"

	"clipforge/internal/services"
)

func TestDiagnosticKeepsTail(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	got := services.Diagnostic([]byte(b.String()))
	if strings.Contains(got, "line 0\n") || strings.HasPrefix(got, "line 19") {
		t.Fatalf("expected only the tail, got %q", got)
	}
	if !strings.HasPrefix(got, "line 20") || !strings.HasSuffix(got, "line 39") {
		t.Fatalf("unexpected diagnostic window: %q", got)
	}
}

func TestDiagnosticEmpty(t *testing.T) {
	if got := services.Diagnostic([]byte("  \n ")); got != "" {
		t.Fatalf("expected empty diagnostic, got %q", got)
	}
}
