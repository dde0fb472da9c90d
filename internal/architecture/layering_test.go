package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Modules may only see each other through port/in and dto. Within a
// module, inner layers must not reach outward: services and usecases
// never import adapters, domain imports no other layer.
func TestModuleLayerImports(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	root := filepath.Join("..", "modules")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		slash := filepath.ToSlash(path)
		module, layer := classify(slash)
		if module == "" || layer == "" {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.Contains(importPath, "pathlight/internal/modules/") {
				continue
			}
			if breaksLayering(module, layer, importPath) {
				t.Fatalf("forbidden import in %s (%s): %s", slash, layer, importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk modules: %v", err)
	}
}

var layers = []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"}

func classify(path string) (module, layer string) {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			module = parts[i+1]
			break
		}
	}
	for _, l := range layers {
		if strings.Contains(path, "/"+l+"/") {
			layer = l
			break
		}
	}
	return module, layer
}

func isPublicSurface(importPath string) bool {
	return strings.Contains(importPath, "/port/in") || strings.Contains(importPath, "/dto")
}

func breaksLayering(module, layer, importPath string) bool {
	sameModule := strings.Contains(importPath, "/internal/modules/"+module+"/")
	if !sameModule {
		// Another module's internals are off limits; its published
		// surface is port/in and dto.
		if strings.Contains(importPath, "/service/") ||
			strings.Contains(importPath, "/adapter/") ||
			strings.Contains(importPath, "/usecase/") {
			return true
		}
		if isPublicSurface(importPath) {
			return false
		}
	}

	switch layer {
	case "adapter/in":
		return !isPublicSurface(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain":
		return strings.Contains(importPath, "/adapter/") ||
			strings.Contains(importPath, "/usecase/") ||
			strings.Contains(importPath, "/service/")
	default:
		return false
	}
}
