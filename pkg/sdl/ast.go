package sdl

// position is embedded in every AST node and records the line and column
// of the node's introducing token.
type position struct {
	Line int
	Col  int
}

// Pos returns the node's source position.
func (p position) Pos() (int, int) { return p.Line, p.Col }

// Node is the interface common to all AST nodes.
type Node interface {
	Pos() (line, col int)
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Program is an ordered list of top-level statements. Nodes are immutable
// after parsing; the evaluator only reads them.
type Program []Stmt

// LiteralExpr represents a number, string, or boolean literal. Token
// discriminates which payload field is meaningful.
type LiteralExpr struct {
	position
	Token  TokenType
	NumVal float64
	StrVal string
}

func (*LiteralExpr) exprNode() {}

// IdentExpr represents a variable reference.
type IdentExpr struct {
	position
	Name string
}

func (*IdentExpr) exprNode() {}

// UnaryExpr represents a unary operation (-x, !x).
type UnaryExpr struct {
	position
	Op      TokenType
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// BinaryExpr represents a binary operation (a + b, x == y, a && b).
type BinaryExpr struct {
	position
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// CallExpr represents a function call. The callee is a name resolved at
// evaluation time, first in the environment, then among the builtins.
type CallExpr struct {
	position
	Name string
	Args []Expr
}

func (*CallExpr) exprNode() {}

// IndexExpr represents index access (arr[0], dict["key"]).
type IndexExpr struct {
	position
	Target Expr
	Index  Expr
}

func (*IndexExpr) exprNode() {}

// VectorExpr represents a vector literal <x, y, z>. Exactly three
// components.
type VectorExpr struct {
	position
	X, Y, Z Expr
}

func (*VectorExpr) exprNode() {}

// ArrayExpr represents an array literal [a, b, c].
type ArrayExpr struct {
	position
	Elems []Expr
}

func (*ArrayExpr) exprNode() {}

// DictEntry is one key-value pair of a dictionary literal. The field
// shorthand (a bare identifier standing for key and value both) is
// desugared at parse time into an IdentExpr value.
type DictEntry struct {
	Key   string
	Value Expr
}

// DictExpr represents a dictionary literal { key: value, ... }. Entry
// order is source order.
type DictExpr struct {
	position
	Entries []DictEntry
}

func (*DictExpr) exprNode() {}

// LetStmt declares a new binding in the current scope.
type LetStmt struct {
	position
	Name  string
	Value Expr
}

func (*LetStmt) stmtNode() {}

// AssignStmt mutates the nearest ancestor binding of Name, or creates the
// binding in the current scope when none exists.
type AssignStmt struct {
	position
	Name  string
	Value Expr
}

func (*AssignStmt) stmtNode() {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	position
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// BlockStmt is a bare brace-delimited block. Its body runs in a fresh
// child scope, so let bindings inside it do not leak out.
type BlockStmt struct {
	position
	Body []Stmt
}

func (*BlockStmt) stmtNode() {}

// IfBranch is one arm of an if/else-if/else chain. A nil Cond marks the
// final else.
type IfBranch struct {
	Cond Expr
	Body []Stmt
}

// IfStmt represents an if/else-if/else chain: branches evaluate top to
// bottom and the first truthy condition wins.
type IfStmt struct {
	position
	Branches []IfBranch
}

func (*IfStmt) stmtNode() {}

// ForStmt represents a bounded range loop: for Var in From to To { }.
// The upper bound is exclusive; bounds evaluate once before the loop.
type ForStmt struct {
	position
	Var  string
	From Expr
	To   Expr
	Body []Stmt
}

func (*ForStmt) stmtNode() {}

// FnStmt declares a user-defined function in the current scope, capturing
// that scope by reference.
type FnStmt struct {
	position
	Name   string
	Params []string
	Body   []Stmt
}

func (*FnStmt) stmtNode() {}

// ReturnStmt terminates the enclosing function body. A nil Value
// returns unit.
type ReturnStmt struct {
	position
	Value Expr
}

func (*ReturnStmt) stmtNode() {}

// ObjectStmt declares a scene object: a kind name immediately followed by
// a dictionary-shaped body.
type ObjectStmt struct {
	position
	Kind string
	Body *DictExpr
}

func (*ObjectStmt) stmtNode() {}
