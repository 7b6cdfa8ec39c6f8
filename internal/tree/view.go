package tree

// ViewNode is the capability interface every view-tree variant implements.
type ViewNode interface {
	Pos() Position
	viewNode()
}

type viewBase struct {
	Position Position
}

func (b viewBase) Pos() Position { return b.Position }

// Attribute is one HTML attribute or event handler on an Element.
type Attribute struct {
	Name  string
	Value Expr
}

// IsEvent reports whether this attribute binds a DOM event (spec.md §4.C
// item 6 names oninput/onchange/onkeydown as the distinguished kinds, but
// any on*-prefixed name is treated as an event binding for click-handler
// registration purposes).
func (a Attribute) IsEvent() bool {
	return len(a.Name) > 2 && a.Name[:2] == "on"
}

// Element is an HTML element: tag, attributes, children, and an optional
// ref-binding identifier that receives the created handle.
type Element struct {
	viewBase
	Tag        string
	Attributes []Attribute
	Children   []ViewNode
	RefBinding string // "" if this element is not bound to a named handle

	// ElementID is assigned by the view compiler's element-ID counter
	// during the creation-phase walk (post-analysis annotation).
	ElementID int
}

func (n *Element) viewNode() {}

// ComponentArg is one named argument in a component instantiation.
type ComponentArg struct {
	Name      string
	Value     Expr
	Reference bool // passed as &arg
	Move      bool // passed as :arg

	// CallbackSig is the inferred callback parameter-type signature,
	// annotated by the checker when this argument binds a callback
	// parameter (spec.md §5's "inferred callback signatures on
	// instantiation props").
	CallbackSig []Type
}

// ComponentInst instantiates a child component in the view tree.
type ComponentInst struct {
	viewBase
	Module string // module prefix, "" if unqualified
	Name   string
	Args   []ComponentArg

	// InstanceID is this instantiation's 0-based ordinal among instances of
	// the same component type within the owning component (drives the
	// per-component-type instance counters in spec.md §4.F).
	InstanceID int
}

func (n *ComponentInst) viewNode() {}

// TextNode is literal or interpolated text content.
type TextNode struct {
	viewBase
	Value Expr // typically *StringLit, possibly with interpolation segments
}

func (n *TextNode) viewNode() {}

// ViewIf is a view-tree `if`/`else` conditional region.
type ViewIf struct {
	viewBase
	Cond Expr
	Then []ViewNode
	Else []ViewNode

	// Reactive and RegionID are assigned by the view compiler: Reactive is
	// false when the condition appears inside a loop or reactive tracking
	// is otherwise disabled (spec.md §4.F emits a plain conditional in that
	// case); RegionID is the fresh if-region id otherwise.
	Reactive bool
	RegionID int
}

func (n *ViewIf) viewNode() {}

// ViewForRange is an index-based `for i in start:end { ... }` loop region.
type ViewForRange struct {
	viewBase
	Var        string
	Start, End Expr
	Body       []ViewNode

	Reactive bool
	RegionID int
}

func (n *ViewForRange) viewNode() {}

// ViewForEach is an iterable-based loop region with an optional key
// expression; a non-nil Key selects keyed reconciliation (spec.md §4.F
// "View each-for with key"), while a nil Key is lowered the same way as a
// ViewForRange but over an iterable instead of an index range.
type ViewForEach struct {
	viewBase
	Var      string
	Iterable Expr
	Key      Expr // resolved against Var; nil for an unkeyed each-for
	Body     []ViewNode

	RegionID int
}

func (n *ViewForEach) viewNode() {}

// IsKeyed reports whether this loop uses keyed reconciliation.
func (n *ViewForEach) IsKeyed() bool { return n.Key != nil }

// RouteNode is a `<route/>` placeholder, valid only in a component whose
// router block is non-nil (spec.md §4.C item 8).
type RouteNode struct {
	viewBase
}

func (n *RouteNode) viewNode() {}
