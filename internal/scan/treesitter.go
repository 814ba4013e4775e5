package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterExtractor walks one parsed file and emits a Document per
// matched type node and per function/method node not nested inside
// another function, per the node-kind table for its language. Grounded in the teacher's treeSitterParser
// (internal/indexer/parsers/treesitter.go), collapsed to a single
// table-driven walker instead of one hand-written parser per language.
type treeSitterExtractor struct {
	lang string
	spec languageSpec
}

func newTreeSitterExtractor(lang string, spec languageSpec) *treeSitterExtractor {
	return &treeSitterExtractor{lang: lang, spec: spec}
}

func (e *treeSitterExtractor) extract(relPath string, source []byte) ([]Document, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	language := e.spec.language()
	parser.SetLanguage(language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("scan: parse %s as %s failed", relPath, e.lang)
	}
	defer tree.Close()

	imports := e.collectImports(tree.RootNode(), source)

	var docs []Document
	e.walk(tree.RootNode(), source, relPath, nil, imports, &docs)
	return docs, nil
}

// walk visits node's children, emitting a Document for every node whose
// kind appears in the language's type or function table. ancestorKinds
// carries the stack of matched ancestor kinds so a function nested inside
// a type declaration is classified as a method rather than a function.
func (e *treeSitterExtractor) walk(node *sitter.Node, source []byte, relPath string, ancestorKinds []string, imports []string, docs *[]Document) {
	if node == nil {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}

		kind := child.Kind()
		switch {
		case e.spec.typeKinds[kind] != "":
			doc := e.buildDocument(child, source, relPath, e.spec.typeKinds[kind], imports)
			*docs = append(*docs, doc)
			e.walk(child, source, relPath, append(ancestorKinds, kind), imports, docs)
			continue

		case e.spec.funcKinds[kind]:
			compType := ComponentFunction
			if len(ancestorKinds) > 0 {
				compType = ComponentMethod
			}
			doc := e.buildDocument(child, source, relPath, compType, imports)
			*docs = append(*docs, doc)
			// Methods don't nest further components worth extracting.
			continue
		}

		e.walk(child, source, relPath, ancestorKinds, imports, docs)
	}
}

func (e *treeSitterExtractor) buildDocument(node *sitter.Node, source []byte, relPath string, compType ComponentType, imports []string) Document {
	name := nodeName(node, source)
	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1
	text := string(source[node.StartByte():node.EndByte()])

	id := fmt.Sprintf("%s:%s:%d", relPath, name, startLine)

	return Document{
		ID:       id,
		Language: e.lang,
		Text:     text,
		Metadata: Metadata{
			File:      relPath,
			Path:      relPath,
			Type:      compType,
			Name:      name,
			StartLine: startLine,
			EndLine:   endLine,
			Signature: firstLine(text),
			Snippet:   truncate(text, 400),
			Imports:   imports,
			Exported:  isExported(e.lang, name),
		},
	}
}

func (e *treeSitterExtractor) collectImports(root *sitter.Node, source []byte) []string {
	var imports []string
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if e.spec.importKinds[n.Kind()] {
			imports = append(imports, strings.TrimSpace(string(source[n.StartByte():n.EndByte()])))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(uint(i)))
		}
	}
	visit(root)
	return imports
}

// nodeName reads the conventional "name" field; impl_item in rust has no
// name field of its own, so its type target is used instead.
func nodeName(node *sitter.Node, source []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return string(source[nameNode.StartByte():nameNode.EndByte()])
	}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		return string(source[typeNode.StartByte():typeNode.EndByte()])
	}
	return "<anonymous>"
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}

// isExported reports a python, ruby or php name as exported unless it is
// prefixed with an underscore; for every other language a name is
// exported when it starts with an ASCII uppercase letter.
func isExported(lang, name string) bool {
	if name == "" {
		return false
	}
	switch lang {
	case "python", "ruby":
		return !strings.HasPrefix(name, "_")
	case "php":
		return !strings.HasPrefix(name, "_")
	default:
		r := []rune(name)[0]
		return r >= 'A' && r <= 'Z'
	}
}

func readFile(repoRoot, relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(repoRoot, relPath))
}
