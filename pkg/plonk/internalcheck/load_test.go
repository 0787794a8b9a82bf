package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

var patterns = []string{
	"github.com/marlinplonk/plonk-go/pkg/plonk/...",
	"github.com/marlinplonk/plonk-go/internal/...",
}

func load(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()
	pkgs, err := packages.Load(&packages.Config{Mode: mode}, patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	return pkgs
}
