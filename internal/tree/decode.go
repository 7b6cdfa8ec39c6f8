package tree

// This file implements the JSON decode side of the wire contract SPEC_FULL.md
// §4.B describes: the external parser hands this compiler a Program as JSON,
// with every Expr/Stmt/ViewNode sum-type variant tagged by a "kind" field
// naming its Go type. Decoding is two-pass: json.RawMessage defers each
// interface-typed field until its concrete variant is known, then a type
// switch on Kind builds the right struct and recurses into its own
// interface-typed fields the same way.

import (
	"encoding/json"
	"fmt"
)

// DecodeProgram decodes a whole Program from its JSON wire form.
func DecodeProgram(data []byte) (*Program, error) {
	var w struct {
		Components []json.RawMessage  `json:"components"`
		Enums      []EnumDecl         `json:"enums"`
		DataTypes  []json.RawMessage  `json:"data_types"`
		Imports    map[string][]string `json:"imports"`
		ModuleOf   map[string]string   `json:"module_of"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("tree: decoding program: %w", err)
	}
	prog := &Program{Imports: w.Imports, ModuleOf: w.ModuleOf, Enums: w.Enums}
	for _, raw := range w.DataTypes {
		d, err := decodeDataTypeDecl(raw)
		if err != nil {
			return nil, err
		}
		prog.DataTypes = append(prog.DataTypes, d)
	}
	for _, raw := range w.Components {
		c, err := decodeComponent(raw)
		if err != nil {
			return nil, err
		}
		prog.Components = append(prog.Components, c)
	}
	return prog, nil
}

func kindOf(raw json.RawMessage) (string, error) {
	if raw == nil {
		return "", nil
	}
	var k struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &k); err != nil {
		return "", fmt.Errorf("tree: reading kind discriminator: %w", err)
	}
	return k.Kind, nil
}

func decodeDataField(raw json.RawMessage) (DataField, error) {
	var w struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
		Type  Type   `json:"type"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return DataField{}, fmt.Errorf("tree: decoding data field: %w", err)
	}
	return DataField{Index: w.Index, Name: w.Name, Type: w.Type}, nil
}

func decodeDataTypeDecl(raw json.RawMessage) (DataTypeDecl, error) {
	var w struct {
		Position Position          `json:"position"`
		Name     string            `json:"name"`
		Module   string            `json:"module"`
		Fields   []json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return DataTypeDecl{}, fmt.Errorf("tree: decoding data type: %w", err)
	}
	d := DataTypeDecl{Position: w.Position, Name: w.Name, Module: w.Module}
	for _, f := range w.Fields {
		field, err := decodeDataField(f)
		if err != nil {
			return DataTypeDecl{}, err
		}
		d.Fields = append(d.Fields, field)
	}
	return d, nil
}

func decodeParam(raw json.RawMessage) (Param, error) {
	var w struct {
		Position    Position        `json:"position"`
		Type        Type            `json:"type"`
		Name        string          `json:"name"`
		Mutable     bool            `json:"mutable"`
		Reference   bool            `json:"reference"`
		Callback    bool            `json:"callback"`
		CallbackSig []Type          `json:"callback_sig"`
		Default     json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Param{}, fmt.Errorf("tree: decoding param: %w", err)
	}
	p := Param{
		Position: w.Position, Type: w.Type, Name: w.Name,
		Mutable: w.Mutable, Reference: w.Reference,
		Callback: w.Callback, CallbackSig: w.CallbackSig,
	}
	if len(w.Default) > 0 {
		def, err := DecodeExpr(w.Default)
		if err != nil {
			return Param{}, err
		}
		p.Default = def
	}
	return p, nil
}

func decodeStateVar(raw json.RawMessage) (StateVar, error) {
	var w struct {
		Position  Position        `json:"position"`
		Type      Type            `json:"type"`
		Name      string          `json:"name"`
		Mutable   bool            `json:"mutable"`
		Reference bool            `json:"reference"`
		Public    bool            `json:"public"`
		Init      json.RawMessage `json:"init"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return StateVar{}, fmt.Errorf("tree: decoding state var: %w", err)
	}
	sv := StateVar{
		Position: w.Position, Type: w.Type, Name: w.Name,
		Mutable: w.Mutable, Reference: w.Reference, Public: w.Public,
	}
	if len(w.Init) > 0 {
		init, err := DecodeExpr(w.Init)
		if err != nil {
			return StateVar{}, err
		}
		sv.Init = init
	}
	return sv, nil
}

func decodeReturnType(raw json.RawMessage) (ReturnType, error) {
	if len(raw) == 0 {
		return ReturnType{}, nil
	}
	var w struct {
		Single *Type  `json:"single"`
		Tuple  []Type `json:"tuple"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return ReturnType{}, fmt.Errorf("tree: decoding return type: %w", err)
	}
	return ReturnType{Single: w.Single, Tuple: w.Tuple}, nil
}

func decodeMethod(raw json.RawMessage) (Method, error) {
	var w struct {
		Position Position          `json:"position"`
		Name     string            `json:"name"`
		Params   []json.RawMessage `json:"params"`
		Return   json.RawMessage   `json:"return"`
		Body     json.RawMessage   `json:"body"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Method{}, fmt.Errorf("tree: decoding method: %w", err)
	}
	m := Method{Position: w.Position, Name: w.Name}
	for _, p := range w.Params {
		param, err := decodeParam(p)
		if err != nil {
			return Method{}, err
		}
		m.Params = append(m.Params, param)
	}
	ret, err := decodeReturnType(w.Return)
	if err != nil {
		return Method{}, err
	}
	m.Return = ret
	if len(w.Body) > 0 {
		body, err := decodeStmt(w.Body)
		if err != nil {
			return Method{}, err
		}
		block, ok := body.(*Block)
		if !ok {
			return Method{}, fmt.Errorf("tree: method %q body must be a block, got %T", w.Name, body)
		}
		m.Body = block
	}
	return m, nil
}

func decodeRouterBlock(raw json.RawMessage) (*RouterBlock, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var w struct {
		Position Position `json:"position"`
		Routes   []struct {
			Position Position `json:"position"`
			Path     string   `json:"path"`
			Component string  `json:"component"`
			Module   string   `json:"module"`
			Args     []struct {
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
			} `json:"args"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("tree: decoding router block: %w", err)
	}
	rb := &RouterBlock{Position: w.Position}
	for _, r := range w.Routes {
		route := Route{Position: r.Position, Path: r.Path, Component: r.Component, Module: r.Module}
		for _, a := range r.Args {
			val, err := DecodeExpr(a.Value)
			if err != nil {
				return nil, err
			}
			route.Args = append(route.Args, RouteArg{Name: a.Name, Value: val})
		}
		rb.Routes = append(rb.Routes, route)
	}
	return rb, nil
}

func decodeComponent(raw json.RawMessage) (*Component, error) {
	var w struct {
		Name       string            `json:"name"`
		Module     string            `json:"module"`
		SourceFile string            `json:"source_file"`
		Public     bool              `json:"public"`
		Params     []json.RawMessage `json:"params"`
		State      []json.RawMessage `json:"state"`
		Methods    []json.RawMessage `json:"methods"`
		Enums      []EnumDecl        `json:"enums"`
		DataTypes  []json.RawMessage `json:"data_types"`
		View       []json.RawMessage `json:"view"`
		Router     json.RawMessage   `json:"router"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("tree: decoding component: %w", err)
	}
	c := &Component{Name: w.Name, Module: w.Module, SourceFile: w.SourceFile, Public: w.Public, Enums: w.Enums}
	for _, p := range w.Params {
		param, err := decodeParam(p)
		if err != nil {
			return nil, err
		}
		c.Params = append(c.Params, param)
	}
	for _, s := range w.State {
		sv, err := decodeStateVar(s)
		if err != nil {
			return nil, err
		}
		c.State = append(c.State, sv)
	}
	for _, m := range w.Methods {
		method, err := decodeMethod(m)
		if err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, method)
	}
	for _, d := range w.DataTypes {
		dt, err := decodeDataTypeDecl(d)
		if err != nil {
			return nil, err
		}
		c.DataTypes = append(c.DataTypes, dt)
	}
	for _, v := range w.View {
		node, err := decodeViewNode(v)
		if err != nil {
			return nil, err
		}
		c.View = append(c.View, node)
	}
	router, err := decodeRouterBlock(w.Router)
	if err != nil {
		return nil, err
	}
	c.Router = router
	return c, nil
}

// DecodeExpr decodes a single JSON-encoded expression node, dispatching on
// its "kind" discriminator.
func DecodeExpr(raw json.RawMessage) (Expr, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "", "IntLit":
		var w struct {
			Position Position `json:"position"`
			Value    int64    `json:"value"`
		}
		if kind == "" {
			return nil, fmt.Errorf("tree: expression missing kind discriminator")
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &IntLit{Value: w.Value}
		n.Position = w.Position
		return n, nil
	case "FloatLit":
		var w struct {
			Position Position `json:"position"`
			Value    float64  `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &FloatLit{Value: w.Value}
		n.Position = w.Position
		return n, nil
	case "BoolLit":
		var w struct {
			Position Position `json:"position"`
			Value    bool     `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &BoolLit{Value: w.Value}
		n.Position = w.Position
		return n, nil
	case "StringLit":
		var w struct {
			Position Position `json:"position"`
			Segments []struct {
				Literal string          `json:"literal"`
				Expr    json.RawMessage `json:"expr"`
			} `json:"segments"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &StringLit{}
		n.Position = w.Position
		for _, s := range w.Segments {
			seg := StringSegment{Literal: s.Literal}
			if len(s.Expr) > 0 {
				e, err := DecodeExpr(s.Expr)
				if err != nil {
					return nil, err
				}
				seg.Expr = e
			}
			n.Segments = append(n.Segments, seg)
		}
		return n, nil
	case "Ident":
		var w struct {
			Position Position `json:"position"`
			Name     string   `json:"name"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &Ident{Name: w.Name}
		n.Position = w.Position
		return n, nil
	case "MemberAccess":
		var w struct {
			Position Position        `json:"position"`
			Object   json.RawMessage `json:"object"`
			Member   string          `json:"member"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		obj, err := DecodeExpr(w.Object)
		if err != nil {
			return nil, err
		}
		n := &MemberAccess{Object: obj, Member: w.Member}
		n.Position = w.Position
		return n, nil
	case "IndexAccess":
		var w struct {
			Position Position        `json:"position"`
			Object   json.RawMessage `json:"object"`
			Index    json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		obj, err := DecodeExpr(w.Object)
		if err != nil {
			return nil, err
		}
		idx, err := DecodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		n := &IndexAccess{Object: obj, Index: idx}
		n.Position = w.Position
		return n, nil
	case "BinaryOp":
		var w struct {
			Position Position        `json:"position"`
			Op       string          `json:"op"`
			Left     json.RawMessage `json:"left"`
			Right    json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		left, err := DecodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		n := &BinaryOp{Op: w.Op, Left: left, Right: right}
		n.Position = w.Position
		return n, nil
	case "UnaryOp":
		var w struct {
			Position Position        `json:"position"`
			Op       string          `json:"op"`
			Operand  json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		operand, err := DecodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &UnaryOp{Op: w.Op, Operand: operand}
		n.Position = w.Position
		return n, nil
	case "PostfixOp":
		var w struct {
			Position Position        `json:"position"`
			Op       string          `json:"op"`
			Operand  json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		operand, err := DecodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &PostfixOp{Op: w.Op, Operand: operand}
		n.Position = w.Position
		return n, nil
	case "TernaryOp":
		var w struct {
			Position Position        `json:"position"`
			Cond     json.RawMessage `json:"cond"`
			Then     json.RawMessage `json:"then"`
			Else     json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := DecodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := DecodeExpr(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := DecodeExpr(w.Else)
		if err != nil {
			return nil, err
		}
		n := &TernaryOp{Cond: cond, Then: then, Else: els}
		n.Position = w.Position
		return n, nil
	case "Call":
		var w struct {
			Position Position          `json:"position"`
			Callee   json.RawMessage   `json:"callee"`
			Args     []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		callee, err := DecodeExpr(w.Callee)
		if err != nil {
			return nil, err
		}
		n := &Call{Callee: callee}
		n.Position = w.Position
		for _, a := range w.Args {
			arg, err := DecodeExpr(a)
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, arg)
		}
		return n, nil
	case "EnumAccess":
		var w struct {
			Position Position `json:"position"`
			EnumName string   `json:"enum_name"`
			Member   string   `json:"member"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &EnumAccess{EnumName: w.EnumName, Member: w.Member}
		n.Position = w.Position
		return n, nil
	case "ArrayLit":
		var w struct {
			Position Position          `json:"position"`
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &ArrayLit{}
		n.Position = w.Position
		for _, e := range w.Elements {
			el, err := DecodeExpr(e)
			if err != nil {
				return nil, err
			}
			n.Elements = append(n.Elements, el)
		}
		return n, nil
	case "ArrayRepeat":
		var w struct {
			Position Position        `json:"position"`
			Value    json.RawMessage `json:"value"`
			Count    json.RawMessage `json:"count"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		val, err := DecodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		count, err := DecodeExpr(w.Count)
		if err != nil {
			return nil, err
		}
		n := &ArrayRepeat{Value: val, Count: count}
		n.Position = w.Position
		return n, nil
	case "RefExpr":
		var w struct {
			Position Position        `json:"position"`
			Operand  json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		operand, err := DecodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &RefExpr{Operand: operand}
		n.Position = w.Position
		return n, nil
	case "MoveExpr":
		var w struct {
			Position Position        `json:"position"`
			Operand  json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		operand, err := DecodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		n := &MoveExpr{Operand: operand}
		n.Position = w.Position
		return n, nil
	case "MatchExpr":
		var w struct {
			Position Position `json:"position"`
			Subject  json.RawMessage `json:"subject"`
			Arms     []struct {
				Pattern string          `json:"pattern"`
				Body    json.RawMessage `json:"body"`
			} `json:"arms"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		subject, err := DecodeExpr(w.Subject)
		if err != nil {
			return nil, err
		}
		n := &MatchExpr{Subject: subject}
		n.Position = w.Position
		for _, a := range w.Arms {
			body, err := DecodeExpr(a.Body)
			if err != nil {
				return nil, err
			}
			n.Arms = append(n.Arms, MatchArm{Pattern: a.Pattern, Body: body})
		}
		return n, nil
	case "BlockExpr":
		var w struct {
			Position Position          `json:"position"`
			Stmts    []json.RawMessage `json:"stmts"`
			Yield    json.RawMessage   `json:"yield"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &BlockExpr{}
		n.Position = w.Position
		for _, s := range w.Stmts {
			st, err := decodeStmt(s)
			if err != nil {
				return nil, err
			}
			n.Stmts = append(n.Stmts, st)
		}
		if len(w.Yield) > 0 {
			y, err := DecodeExpr(w.Yield)
			if err != nil {
				return nil, err
			}
			n.Yield = y
		}
		return n, nil
	default:
		return nil, fmt.Errorf("tree: unknown expression kind %q", kind)
	}
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "VarDecl":
		var w struct {
			Position  Position        `json:"position"`
			Name      string          `json:"name"`
			Mutable   bool            `json:"mutable"`
			Reference bool            `json:"reference"`
			Declared  Type            `json:"declared"`
			Init      json.RawMessage `json:"init"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &VarDecl{Name: w.Name, Mutable: w.Mutable, Reference: w.Reference, Declared: w.Declared}
		n.Position = w.Position
		if len(w.Init) > 0 {
			init, err := DecodeExpr(w.Init)
			if err != nil {
				return nil, err
			}
			n.Init = init
		}
		return n, nil
	case "Assign":
		var w struct {
			Position Position        `json:"position"`
			Name     string          `json:"name"`
			Value    json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		value, err := DecodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		n := &Assign{Name: w.Name, Value: value}
		n.Position = w.Position
		return n, nil
	case "IndexAssign":
		var w struct {
			Position Position        `json:"position"`
			Target   json.RawMessage `json:"target"`
			Op       string          `json:"op"`
			Value    json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := DecodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		value, err := DecodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		n := &IndexAssign{Target: target, Op: w.Op, Value: value}
		n.Position = w.Position
		return n, nil
	case "MemberAssign":
		var w struct {
			Position Position        `json:"position"`
			Target   json.RawMessage `json:"target"`
			Op       string          `json:"op"`
			Value    json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := DecodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		value, err := DecodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		n := &MemberAssign{Target: target, Op: w.Op, Value: value}
		n.Position = w.Position
		return n, nil
	case "TupleDestructure":
		var w struct {
			Position Position        `json:"position"`
			Names    []string        `json:"names"`
			Types    []Type          `json:"types"`
			Mutable  []bool          `json:"mutable"`
			Value    json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		value, err := DecodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		n := &TupleDestructure{Names: w.Names, Types: w.Types, Mutable: w.Mutable, Value: value}
		n.Position = w.Position
		return n, nil
	case "ExprStmt":
		var w struct {
			Position Position        `json:"position"`
			X        json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := DecodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		n := &ExprStmt{X: x}
		n.Position = w.Position
		return n, nil
	case "Return":
		var w struct {
			Position Position          `json:"position"`
			Values   []json.RawMessage `json:"values"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &Return{}
		n.Position = w.Position
		for _, v := range w.Values {
			val, err := DecodeExpr(v)
			if err != nil {
				return nil, err
			}
			n.Values = append(n.Values, val)
		}
		return n, nil
	case "Block":
		var w struct {
			Position Position          `json:"position"`
			Stmts    []json.RawMessage `json:"stmts"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &Block{}
		n.Position = w.Position
		for _, s := range w.Stmts {
			st, err := decodeStmt(s)
			if err != nil {
				return nil, err
			}
			n.Stmts = append(n.Stmts, st)
		}
		return n, nil
	case "If":
		var w struct {
			Position Position        `json:"position"`
			Cond     json.RawMessage `json:"cond"`
			Then     json.RawMessage `json:"then"`
			Else     json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := DecodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		thenStmt, err := decodeStmt(w.Then)
		if err != nil {
			return nil, err
		}
		thenBlock, ok := thenStmt.(*Block)
		if !ok {
			return nil, fmt.Errorf("tree: If.Then must be a block, got %T", thenStmt)
		}
		n := &If{Cond: cond, Then: thenBlock}
		n.Position = w.Position
		if len(w.Else) > 0 {
			elseStmt, err := decodeStmt(w.Else)
			if err != nil {
				return nil, err
			}
			elseBlock, ok := elseStmt.(*Block)
			if !ok {
				return nil, fmt.Errorf("tree: If.Else must be a block, got %T", elseStmt)
			}
			n.Else = elseBlock
		}
		return n, nil
	case "RangeFor":
		var w struct {
			Position Position        `json:"position"`
			Var      string          `json:"var"`
			Start    json.RawMessage `json:"start"`
			End      json.RawMessage `json:"end"`
			Body     json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		start, err := DecodeExpr(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := DecodeExpr(w.End)
		if err != nil {
			return nil, err
		}
		bodyStmt, err := decodeStmt(w.Body)
		if err != nil {
			return nil, err
		}
		body, ok := bodyStmt.(*Block)
		if !ok {
			return nil, fmt.Errorf("tree: RangeFor.Body must be a block, got %T", bodyStmt)
		}
		n := &RangeFor{Var: w.Var, Start: start, End: end, Body: body}
		n.Position = w.Position
		return n, nil
	case "EachFor":
		var w struct {
			Position Position        `json:"position"`
			Var      string          `json:"var"`
			Iterable json.RawMessage `json:"iterable"`
			Body     json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		iterable, err := DecodeExpr(w.Iterable)
		if err != nil {
			return nil, err
		}
		bodyStmt, err := decodeStmt(w.Body)
		if err != nil {
			return nil, err
		}
		body, ok := bodyStmt.(*Block)
		if !ok {
			return nil, fmt.Errorf("tree: EachFor.Body must be a block, got %T", bodyStmt)
		}
		n := &EachFor{Var: w.Var, Iterable: iterable, Body: body}
		n.Position = w.Position
		return n, nil
	default:
		return nil, fmt.Errorf("tree: unknown statement kind %q", kind)
	}
}

func decodeAttribute(raw json.RawMessage) (Attribute, error) {
	var w struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return Attribute{}, err
	}
	a := Attribute{Name: w.Name}
	if len(w.Value) > 0 {
		v, err := DecodeExpr(w.Value)
		if err != nil {
			return Attribute{}, err
		}
		a.Value = v
	}
	return a, nil
}

func decodeComponentArg(raw json.RawMessage) (ComponentArg, error) {
	var w struct {
		Name      string          `json:"name"`
		Value     json.RawMessage `json:"value"`
		Reference bool            `json:"reference"`
		Move      bool            `json:"move"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return ComponentArg{}, err
	}
	value, err := DecodeExpr(w.Value)
	if err != nil {
		return ComponentArg{}, err
	}
	return ComponentArg{Name: w.Name, Value: value, Reference: w.Reference, Move: w.Move}, nil
}

func decodeViewNode(raw json.RawMessage) (ViewNode, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Element":
		var w struct {
			Position   Position          `json:"position"`
			Tag        string            `json:"tag"`
			Attributes []json.RawMessage `json:"attributes"`
			Children   []json.RawMessage `json:"children"`
			RefBinding string            `json:"ref_binding"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &Element{Tag: w.Tag, RefBinding: w.RefBinding}
		n.Position = w.Position
		for _, a := range w.Attributes {
			attr, err := decodeAttribute(a)
			if err != nil {
				return nil, err
			}
			n.Attributes = append(n.Attributes, attr)
		}
		for _, c := range w.Children {
			child, err := decodeViewNode(c)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
		return n, nil
	case "ComponentInst":
		var w struct {
			Position Position          `json:"position"`
			Module   string            `json:"module"`
			Name     string            `json:"name"`
			Args     []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &ComponentInst{Module: w.Module, Name: w.Name}
		n.Position = w.Position
		for _, a := range w.Args {
			arg, err := decodeComponentArg(a)
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, arg)
		}
		return n, nil
	case "TextNode":
		var w struct {
			Position Position        `json:"position"`
			Value    json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		value, err := DecodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		n := &TextNode{Value: value}
		n.Position = w.Position
		return n, nil
	case "ViewIf":
		var w struct {
			Position Position          `json:"position"`
			Cond     json.RawMessage   `json:"cond"`
			Then     []json.RawMessage `json:"then"`
			Else     []json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := DecodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		n := &ViewIf{Cond: cond}
		n.Position = w.Position
		for _, t := range w.Then {
			node, err := decodeViewNode(t)
			if err != nil {
				return nil, err
			}
			n.Then = append(n.Then, node)
		}
		for _, e := range w.Else {
			node, err := decodeViewNode(e)
			if err != nil {
				return nil, err
			}
			n.Else = append(n.Else, node)
		}
		return n, nil
	case "ViewForRange":
		var w struct {
			Position Position          `json:"position"`
			Var      string            `json:"var"`
			Start    json.RawMessage   `json:"start"`
			End      json.RawMessage   `json:"end"`
			Body     []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		start, err := DecodeExpr(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := DecodeExpr(w.End)
		if err != nil {
			return nil, err
		}
		n := &ViewForRange{Var: w.Var, Start: start, End: end}
		n.Position = w.Position
		for _, b := range w.Body {
			node, err := decodeViewNode(b)
			if err != nil {
				return nil, err
			}
			n.Body = append(n.Body, node)
		}
		return n, nil
	case "ViewForEach":
		var w struct {
			Position Position          `json:"position"`
			Var      string            `json:"var"`
			Iterable json.RawMessage   `json:"iterable"`
			Key      json.RawMessage   `json:"key"`
			Body     []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		iterable, err := DecodeExpr(w.Iterable)
		if err != nil {
			return nil, err
		}
		n := &ViewForEach{Var: w.Var, Iterable: iterable}
		n.Position = w.Position
		if len(w.Key) > 0 {
			key, err := DecodeExpr(w.Key)
			if err != nil {
				return nil, err
			}
			n.Key = key
		}
		for _, b := range w.Body {
			node, err := decodeViewNode(b)
			if err != nil {
				return nil, err
			}
			n.Body = append(n.Body, node)
		}
		return n, nil
	case "RouteNode":
		var w struct {
			Position Position `json:"position"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		n := &RouteNode{}
		n.Position = w.Position
		return n, nil
	default:
		return nil, fmt.Errorf("tree: unknown view node kind %q", kind)
	}
}
