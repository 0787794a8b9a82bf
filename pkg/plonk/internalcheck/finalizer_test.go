package internalcheck

import (
	"fmt"
	"go/ast"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestWrappersInstallFinalizers requires every type with a Free method to
// be registered with runtime.SetFinalizer(x, (*T).Free) in its package.
func TestWrappersInstallFinalizers(t *testing.T) {
	pkgs := load(t, packages.NeedSyntax|packages.NeedTypes|packages.NeedTypesInfo|packages.NeedFiles|packages.NeedName)

	var missing []string
	for _, pkg := range pkgs {
		// registry.Owned is the embedded helper the wrappers delegate to
		if strings.Contains(pkg.PkgPath, "/internal/") {
			continue
		}
		freers := map[string]bool{}
		finalized := map[string]bool{}
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				switch n := n.(type) {
				case *ast.FuncDecl:
					if n.Name.Name == "Free" && n.Recv != nil && len(n.Recv.List) == 1 {
						if star, ok := n.Recv.List[0].Type.(*ast.StarExpr); ok {
							if id, ok := star.X.(*ast.Ident); ok && id.IsExported() {
								freers[id.Name] = true
							}
						}
					}
				case *ast.CallExpr:
					if name, ok := finalizerTarget(pkg, n); ok {
						finalized[name] = true
					}
				}
				return true
			})
		}
		for name := range freers {
			if !finalized[name] {
				missing = append(missing, fmt.Sprintf("%s.%s", pkg.PkgPath, name))
			}
		}
	}

	sort.Strings(missing)
	if len(missing) > 0 {
		t.Fatalf("wrappers without a Free finalizer:\n%s", strings.Join(missing, "\n"))
	}
}

// finalizerTarget matches runtime.SetFinalizer(_, (*T).Free) and returns T.
func finalizerTarget(pkg *packages.Package, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "SetFinalizer" || len(call.Args) != 2 {
		return "", false
	}
	obj := pkg.TypesInfo.Uses[sel.Sel]
	if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "runtime" {
		return "", false
	}
	method, ok := call.Args[1].(*ast.SelectorExpr)
	if !ok || method.Sel.Name != "Free" {
		return "", false
	}
	paren, ok := method.X.(*ast.ParenExpr)
	if !ok {
		return "", false
	}
	star, ok := paren.X.(*ast.StarExpr)
	if !ok {
		return "", false
	}
	id, ok := star.X.(*ast.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}
