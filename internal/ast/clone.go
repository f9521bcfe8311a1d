package ast

// CloneType deep-clones a type tree. Resolved types are value-like: every
// annotation site gets its own copy. Weak back-references are carried over
// as-is since they do not own their targets.
func CloneType(t Type) Type {
	switch tt := t.(type) {
	case nil:
		return nil
	case *TypeBasic:
		clone := *tt
		return &clone
	case *TypeWithBitWidth:
		clone := *tt
		return &clone
	case *TypeSymbol:
		clone := *tt
		return &clone
	case *TypeUnary:
		clone := *tt
		clone.OperandType = CloneType(tt.OperandType)
		return &clone
	case *TypeFunction:
		clone := &TypeFunction{Token: tt.Token, Const: tt.Const}
		clone.ReturnType = CloneType(tt.ReturnType)
		clone.ArgTypes = make([]Type, len(tt.ArgTypes))
		for i, a := range tt.ArgTypes {
			clone.ArgTypes[i] = CloneType(a)
		}
		return clone
	case *TypeStructured:
		clone := &TypeStructured{Token: tt.Token, Const: tt.Const}
		clone.Members = make([]Declaration, len(tt.Members))
		for i, m := range tt.Members {
			clone.Members[i] = CloneMember(m)
		}
		return clone
	}
	return nil
}

// CloneMember clones a structured type member declaration. Only variable
// members carry state that matters to a type copy.
func CloneMember(d Declaration) Declaration {
	if d == nil {
		return nil
	}
	if v, ok := d.(*DeclarationVariable); ok {
		clone := &DeclarationVariable{
			Token: v.Token,
			Name:  v.Name,
			Type:  CloneType(v.Type),
		}
		clone.SetResolvedType(CloneType(v.ResolvedType()))
		return clone
	}
	return d
}
