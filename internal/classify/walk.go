// internal/classify/walk.go
package classify

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solatis/namekeeper/internal/naming"
)

/*
 * Declaration walk.
 *
 * A single cursor walk visits every node once. Declarations emit their own
 * names; containers (class bodies, object literals, object types, enum
 * bodies) emit their members; every function-like node emits its
 * parameters. Because each construct is owned by exactly one node type, no
 * name is emitted twice.
 *
 * Modifier sources:
 *   global     declaration whose only ancestors are export statements
 *   exported   inside an export statement, or named by a top-level
 *              `export { x }` / `export default x`
 *   unused     not exported and referenced nowhere else in the file
 *              (identifier occurrence count <= 1; shadowing is ignored)
 *   member     accessibility defaults to public; #name is #private
 */

type walker struct {
	path     string
	src      []byte
	refs     map[string]int
	exported map[string]bool
	entities []Entity
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

// add records an entity positioned at the name node.
func (w *walker) add(at *sitter.Node, name string, cat naming.Category, mods naming.Modifier, kind string, tc naming.TypeConstraint) {
	occ := naming.Occurrence{Category: cat, Modifiers: mods, Name: name}
	if naming.TypeEligible(cat) {
		occ.TypeOf = func() naming.TypeConstraint { return tc }
	}
	p := at.StartPoint()
	w.entities = append(w.entities, Entity{
		Occurrence: occ,
		Path:       w.path,
		Line:       int(p.Row) + 1,
		Column:     int(p.Column) + 1,
		Kind:       kind,
	})
}

// walk visits the cursor's node and all of its descendants.
func (w *walker) walk(cursor *sitter.TreeCursor) {
	node := cursor.CurrentNode()

	if !node.IsNamed() {
		return
	}

	switch node.Type() {
	case "lexical_declaration", "variable_declaration":
		w.variables(node)
	case "for_in_statement":
		w.loopVariable(node)
	case "function_declaration", "generator_function_declaration", "function_signature",
		"function", "function_expression", "generator_function":
		w.function(node)
		w.parameters(node)
	case "arrow_function", "method_definition", "abstract_method_signature":
		w.parameters(node)
	case "method_signature":
		if p := node.Parent(); p != nil && p.Type() == "class_body" {
			w.parameters(node)
		}
	case "class_declaration", "abstract_class_declaration", "class":
		w.class(node)
	case "class_body":
		w.classMembers(node)
	case "object":
		w.objectMembers(node)
	case "object_type", "interface_body":
		w.typeMembers(node)
	case "interface_declaration":
		w.typeDeclaration(node, naming.CategoryInterface)
	case "type_alias_declaration":
		w.typeDeclaration(node, naming.CategoryTypeAlias)
	case "enum_declaration":
		w.typeDeclaration(node, naming.CategoryEnum)
	case "enum_body":
		w.enumMembers(node)
	case "type_parameter":
		if name := node.ChildByFieldName("name"); name != nil {
			w.add(name, w.text(name), naming.CategoryTypeParameter, w.unused(w.text(name)), node.Type(), 0)
		}
	case "import_statement":
		w.imports(node)
	}

	if cursor.GoToFirstChild() {
		for {
			w.walk(cursor)
			if !cursor.GoToNextSibling() {
				break
			}
		}
		cursor.GoToParent()
	}
}

// countRefs counts identifier occurrences by text across the whole file.
func (w *walker) countRefs(n *sitter.Node) {
	switch n.Type() {
	case "identifier", "type_identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		w.refs[w.text(n)]++
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.countRefs(n.NamedChild(i))
	}
}

// collectExports records names exported by top-level export clauses.
func (w *walker) collectExports(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "export_statement" {
			continue
		}
		if v := stmt.ChildByFieldName("value"); v != nil && v.Type() == "identifier" {
			w.exported[w.text(v)] = true
		}
		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			clause := stmt.NamedChild(j)
			if clause.Type() != "export_clause" {
				continue
			}
			for k := 0; k < int(clause.NamedChildCount()); k++ {
				spec := clause.NamedChild(k)
				if name := spec.ChildByFieldName("name"); name != nil && spec.Type() == "export_specifier" {
					w.exported[w.text(name)] = true
				}
			}
		}
	}
}

// isTopLevel reports whether decl sits directly in the program, possibly
// wrapped in export statements.
func isTopLevel(decl *sitter.Node) bool {
	p := decl.Parent()
	for p != nil && p.Type() == "export_statement" {
		p = p.Parent()
	}
	return p != nil && p.Type() == "program"
}

func (w *walker) isExported(decl *sitter.Node, name string) bool {
	if p := decl.Parent(); p != nil && p.Type() == "export_statement" {
		return true
	}
	return isTopLevel(decl) && w.exported[name]
}

func (w *walker) unused(name string) naming.Modifier {
	if w.refs[name] <= 1 {
		return naming.ModifierUnused
	}
	return 0
}

// declModifiers computes exported/unused for a declared name.
func (w *walker) declModifiers(decl *sitter.Node, name string) naming.Modifier {
	if w.isExported(decl, name) {
		return naming.ModifierExported
	}
	return w.unused(name)
}

func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

func isFunctionValue(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	}
	return false
}

func isAsyncFunction(n *sitter.Node) bool {
	return isFunctionValue(n) && hasChild(n, "async")
}

// binding is one identifier introduced by a declaration pattern.
type binding struct {
	node         *sitter.Node
	destructured bool
}

// bindings flattens a pattern. Only shorthand object-pattern entries count
// as destructured; renamed entries and array elements are plain bindings.
func bindings(n *sitter.Node) []binding {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return []binding{{node: n}}
	case "shorthand_property_identifier_pattern":
		return []binding{{node: n, destructured: true}}
	case "object_assignment_pattern", "assignment_pattern":
		return bindings(n.ChildByFieldName("left"))
	case "pair_pattern":
		return bindings(n.ChildByFieldName("value"))
	case "object_pattern", "array_pattern", "rest_pattern":
		var out []binding
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, bindings(n.NamedChild(i))...)
		}
		return out
	}
	return nil
}

// variables emits every binding of a const/let/var declaration.
func (w *walker) variables(decl *sitter.Node) {
	var base naming.Modifier
	if hasChild(decl, "const") {
		base |= naming.ModifierConst
	}
	if isTopLevel(decl) {
		base |= naming.ModifierGlobal
	}

	for i := 0; i < int(decl.NamedChildCount()); i++ {
		d := decl.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		for _, b := range bindings(nameNode) {
			name := w.text(b.node)
			mods := base | w.declModifiers(decl, name)
			if b.destructured {
				mods |= naming.ModifierDestructured
			}
			var tc naming.TypeConstraint
			if b.node.Equal(nameNode) {
				if isAsyncFunction(value) {
					mods |= naming.ModifierAsync
				}
				tc = typeOf(d.ChildByFieldName("type"), value, w.src)
			}
			w.add(b.node, name, naming.CategoryVariable, mods, d.Type(), tc)
		}
	}
}

// loopVariable emits the binding of `for (const x of xs)` style loops.
func (w *walker) loopVariable(stmt *sitter.Node) {
	kind := stmt.ChildByFieldName("kind")
	if kind == nil {
		return
	}
	var base naming.Modifier
	if w.text(kind) == "const" {
		base |= naming.ModifierConst
	}
	for _, b := range bindings(stmt.ChildByFieldName("left")) {
		mods := base | w.unused(w.text(b.node))
		if b.destructured {
			mods |= naming.ModifierDestructured
		}
		w.add(b.node, w.text(b.node), naming.CategoryVariable, mods, stmt.Type(), 0)
	}
}

// function emits a named function declaration or expression.
func (w *walker) function(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	mods := w.declModifiers(n, name)
	if isTopLevel(n) {
		mods |= naming.ModifierGlobal
	}
	if hasChild(n, "async") {
		mods |= naming.ModifierAsync
	}
	w.add(nameNode, name, naming.CategoryFunction, mods, n.Type(), 0)
}

// parameters emits the parameters of a function-like node. Parameters
// carrying accessibility, readonly or override become parameter properties.
func (w *walker) parameters(fn *sitter.Node) {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		if single.Type() == "identifier" {
			name := w.text(single)
			w.add(single, name, naming.CategoryParameter, w.unused(name), fn.Type(), 0)
		}
		return
	}

	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			pattern := p.ChildByFieldName("pattern")
			if pattern == nil || pattern.Type() == "this" {
				continue
			}
			typ, value := p.ChildByFieldName("type"), p.ChildByFieldName("value")
			if hasChild(p, "accessibility_modifier") || hasChild(p, "readonly") || hasChild(p, "override_modifier") {
				mods := w.memberModifiers(p, pattern)
				for _, b := range bindings(pattern) {
					w.add(b.node, w.text(b.node), naming.CategoryParameterProperty, mods, p.Type(), typeOf(typ, value, w.src))
				}
				continue
			}
			w.parameterBindings(p, pattern, typ, value)
		case "assignment_pattern":
			w.parameterBindings(p, p.ChildByFieldName("left"), nil, p.ChildByFieldName("right"))
		default:
			w.parameterBindings(p, p, nil, nil)
		}
	}
}

func (w *walker) parameterBindings(p, pattern, typ, value *sitter.Node) {
	for _, b := range bindings(pattern) {
		name := w.text(b.node)
		mods := w.unused(name)
		if b.destructured {
			mods |= naming.ModifierDestructured
		}
		var tc naming.TypeConstraint
		if b.node.Equal(pattern) {
			tc = typeOf(typ, value, w.src)
		}
		w.add(b.node, name, naming.CategoryParameter, mods, p.Type(), tc)
	}
}

// class emits a named class declaration or expression.
func (w *walker) class(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	mods := w.declModifiers(n, name)
	if n.Type() == "abstract_class_declaration" {
		mods |= naming.ModifierAbstract
	}
	w.add(nameNode, name, naming.CategoryClass, mods, n.Type(), 0)
}

// typeDeclaration emits an interface, type alias or enum name.
func (w *walker) typeDeclaration(n *sitter.Node, cat naming.Category) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	w.add(nameNode, name, cat, w.declModifiers(n, name), n.Type(), 0)
}

// memberModifiers reads the member modifiers of a class element or
// parameter property. key is the member name node.
func (w *walker) memberModifiers(n, key *sitter.Node) naming.Modifier {
	var mods naming.Modifier
	switch {
	case key != nil && key.Type() == "private_property_identifier":
		mods |= naming.ModifierHashPrivate
	default:
		mods |= naming.ModifierPublic
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c.Type() == "accessibility_modifier" {
				switch strings.TrimSpace(w.text(c)) {
				case "private":
					mods = mods&^naming.ModifierPublic | naming.ModifierPrivate
				case "protected":
					mods = mods&^naming.ModifierPublic | naming.ModifierProtected
				}
			}
		}
	}
	if hasChild(n, "static") {
		mods |= naming.ModifierStatic
	}
	if hasChild(n, "readonly") {
		mods |= naming.ModifierReadonly
	}
	if hasChild(n, "override_modifier") {
		mods |= naming.ModifierOverride
	}
	if hasChild(n, "abstract") {
		mods |= naming.ModifierAbstract
	}
	return mods
}

// keyName resolves a property key. Computed keys report ok=false.
func (w *walker) keyName(key *sitter.Node) (name string, mods naming.Modifier, ok bool) {
	if key == nil {
		return "", 0, false
	}
	switch key.Type() {
	case "property_identifier", "identifier", "shorthand_property_identifier":
		return w.text(key), 0, true
	case "private_property_identifier":
		return strings.TrimPrefix(w.text(key), "#"), 0, true
	case "string", "number":
		name = w.text(key)
		if key.Type() == "string" {
			name = unquote(name)
		}
		if !isIdentifier(name) {
			mods = naming.ModifierRequiresQuotes
		}
		return name, mods, true
	}
	return "", 0, false
}

func (w *walker) memberKey(n *sitter.Node) *sitter.Node {
	if key := n.ChildByFieldName("name"); key != nil {
		return key
	}
	return n.ChildByFieldName("property")
}

// classMembers emits methods, accessors and properties of a class body.
func (w *walker) classMembers(body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		key := w.memberKey(m)
		name, quoted, ok := w.keyName(key)
		if !ok {
			continue
		}
		mods := w.memberModifiers(m, key) | quoted

		switch m.Type() {
		case "method_definition", "abstract_method_signature", "method_signature":
			if name == "constructor" && key.Type() == "property_identifier" {
				continue
			}
			if hasChild(m, "get") || hasChild(m, "set") {
				w.add(key, name, naming.CategoryClassicAccessor, mods, m.Type(), accessorType(m, w.src))
				continue
			}
			if hasChild(m, "async") {
				mods |= naming.ModifierAsync
			}
			w.add(key, name, naming.CategoryClassMethod, mods, m.Type(), 0)

		case "public_field_definition", "field_definition":
			value := m.ChildByFieldName("value")
			switch {
			case hasChild(m, "accessor"):
				w.add(key, name, naming.CategoryAutoAccessor, mods, m.Type(), typeOf(m.ChildByFieldName("type"), value, w.src))
			case isFunctionValue(value):
				if isAsyncFunction(value) {
					mods |= naming.ModifierAsync
				}
				w.add(key, name, naming.CategoryClassMethod, mods, m.Type(), 0)
			default:
				w.add(key, name, naming.CategoryClassProperty, mods, m.Type(), typeOf(m.ChildByFieldName("type"), value, w.src))
			}
		}
	}
}

// objectMembers emits the properties and methods of an object literal.
func (w *walker) objectMembers(obj *sitter.Node) {
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		m := obj.NamedChild(i)
		switch m.Type() {
		case "pair":
			name, quoted, ok := w.keyName(m.ChildByFieldName("key"))
			if !ok {
				continue
			}
			key, value := m.ChildByFieldName("key"), m.ChildByFieldName("value")
			mods := naming.ModifierPublic | quoted
			if isFunctionValue(value) {
				if isAsyncFunction(value) {
					mods |= naming.ModifierAsync
				}
				w.add(key, name, naming.CategoryObjectLiteralMethod, mods, m.Type(), 0)
				continue
			}
			w.add(key, name, naming.CategoryObjectLiteralProperty, mods, m.Type(), typeOf(nil, value, w.src))

		case "method_definition":
			key := m.ChildByFieldName("name")
			name, quoted, ok := w.keyName(key)
			if !ok {
				continue
			}
			mods := naming.ModifierPublic | quoted
			if hasChild(m, "get") || hasChild(m, "set") {
				w.add(key, name, naming.CategoryClassicAccessor, mods, m.Type(), accessorType(m, w.src))
				continue
			}
			if hasChild(m, "async") {
				mods |= naming.ModifierAsync
			}
			w.add(key, name, naming.CategoryObjectLiteralMethod, mods, m.Type(), 0)

		case "shorthand_property_identifier":
			w.add(m, w.text(m), naming.CategoryObjectLiteralProperty, naming.ModifierPublic, m.Type(), 0)
		}
	}
}

// typeMembers emits property and method signatures of an object type or
// interface body. A property whose annotation is a function type is a method.
func (w *walker) typeMembers(body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		key := m.ChildByFieldName("name")
		name, quoted, ok := w.keyName(key)
		if !ok {
			continue
		}
		mods := naming.ModifierPublic | quoted

		switch m.Type() {
		case "method_signature":
			w.add(key, name, naming.CategoryTypeMethod, mods, m.Type(), 0)
		case "property_signature":
			annotation := m.ChildByFieldName("type")
			if t := unwrapAnnotation(annotation); t != nil && t.Type() == "function_type" {
				w.add(key, name, naming.CategoryTypeMethod, mods, m.Type(), 0)
				continue
			}
			if hasChild(m, "readonly") {
				mods |= naming.ModifierReadonly
			}
			w.add(key, name, naming.CategoryTypeProperty, mods, m.Type(), typeOf(annotation, nil, w.src))
		}
	}
}

// enumMembers emits the members of an enum body.
func (w *walker) enumMembers(body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		key := m
		if m.Type() == "enum_assignment" {
			key = m.ChildByFieldName("name")
		}
		name, quoted, ok := w.keyName(key)
		if !ok {
			continue
		}
		w.add(key, name, naming.CategoryEnumMember, quoted, m.Type(), 0)
	}
}

// imports emits default, namespace and `default as X` import bindings.
// Other named imports are references to foreign declarations and are skipped.
func (w *walker) imports(stmt *sitter.Node) {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		clause := stmt.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			c := clause.NamedChild(j)
			switch c.Type() {
			case "identifier":
				w.add(c, w.text(c), naming.CategoryImport, naming.ModifierDefault, stmt.Type(), 0)
			case "namespace_import":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					if id := c.NamedChild(k); id.Type() == "identifier" {
						w.add(id, w.text(id), naming.CategoryImport, naming.ModifierNamespace, stmt.Type(), 0)
					}
				}
			case "named_imports":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					spec := c.NamedChild(k)
					name, alias := spec.ChildByFieldName("name"), spec.ChildByFieldName("alias")
					if name != nil && alias != nil && w.text(name) == "default" {
						w.add(alias, w.text(alias), naming.CategoryImport, naming.ModifierDefault, stmt.Type(), 0)
					}
				}
			}
		}
	}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// isIdentifier reports whether s can be written as an unquoted property name.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
