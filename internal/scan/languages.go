package scan

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageSpec tells the generic tree-sitter walker (treesitter.go) which
// node kinds are type declarations, which are function/method
// declarations, and which are import statements, for one language.
// Grounded in the teacher's per-language parsers
// (internal/indexer/parsers/{python,typescript,rust,ruby,php,java,c}.go),
// collapsed from their three-tier symbols/definitions/data model into the
// flat per-component Document model spec.md §3 asks for.
type languageSpec struct {
	language   func() *sitter.Language
	typeKinds  map[string]ComponentType // struct/class/interface/enum/trait node kinds
	funcKinds  map[string]bool          // function/method declaration node kinds
	importKinds map[string]bool
}

var languageSpecs = map[string]languageSpec{
	"python": {
		language: func() *sitter.Language { return sitter.NewLanguage(python.Language()) },
		typeKinds: map[string]ComponentType{
			"class_definition": ComponentClass,
		},
		funcKinds:   map[string]bool{"function_definition": true},
		importKinds: map[string]bool{"import_statement": true, "import_from_statement": true},
	},
	"typescript": {
		language: func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		typeKinds: map[string]ComponentType{
			"class_declaration":     ComponentClass,
			"interface_declaration": ComponentInterface,
			"type_alias_declaration": ComponentTypeDecl,
		},
		funcKinds:   map[string]bool{"function_declaration": true, "method_definition": true},
		importKinds: map[string]bool{"import_statement": true},
	},
	"rust": {
		language: func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
		typeKinds: map[string]ComponentType{
			"struct_item": ComponentTypeDecl,
			"enum_item":   ComponentTypeDecl,
			"trait_item":  ComponentInterface,
			"impl_item":   ComponentClass,
		},
		funcKinds:   map[string]bool{"function_item": true},
		importKinds: map[string]bool{"use_declaration": true},
	},
	"ruby": {
		language: func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
		typeKinds: map[string]ComponentType{
			"class":  ComponentClass,
			"module": ComponentModule,
		},
		funcKinds:   map[string]bool{"method": true},
		importKinds: map[string]bool{"call": false}, // ruby has no import node; requires is a call, not tracked
	},
	"php": {
		language: func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
		typeKinds: map[string]ComponentType{
			"class_declaration":     ComponentClass,
			"interface_declaration": ComponentInterface,
			"trait_declaration":     ComponentClass,
		},
		funcKinds:   map[string]bool{"function_definition": true, "method_declaration": true},
		importKinds: map[string]bool{"namespace_use_declaration": true},
	},
	"java": {
		language: func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
		typeKinds: map[string]ComponentType{
			"class_declaration":     ComponentClass,
			"interface_declaration": ComponentInterface,
			"enum_declaration":      ComponentTypeDecl,
		},
		funcKinds:   map[string]bool{"method_declaration": true},
		importKinds: map[string]bool{"import_declaration": true},
	},
	"c": {
		language: func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
		typeKinds: map[string]ComponentType{
			"struct_specifier": ComponentTypeDecl,
			"union_specifier":  ComponentTypeDecl,
			"enum_specifier":   ComponentTypeDecl,
		},
		funcKinds:   map[string]bool{"function_definition": true},
		importKinds: map[string]bool{"preproc_include": true},
	},
}

// SupportedLanguages lists the languages DefaultScanner can parse.
func SupportedLanguages() []string {
	langs := make([]string, 0, len(languageSpecs))
	for l := range languageSpecs {
		langs = append(langs, l)
	}
	return langs
}
