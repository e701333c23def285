// Package runtime implements the scenescript evaluator: a tree-walking
// interpreter over the sdl AST with lexical scoping, user functions, and
// scene object accumulation.
package runtime

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"

	"github.com/lemonberrylabs/scenescript/pkg/scene"
	"github.com/lemonberrylabs/scenescript/pkg/sdl"
	"github.com/lemonberrylabs/scenescript/pkg/stdlib"
	"github.com/lemonberrylabs/scenescript/pkg/types"
)

// MaxCallDepth is the maximum allowed user function call depth.
const MaxCallDepth = 256

// MaxIterations is the maximum total number of loop iterations in a
// single run.
const MaxIterations = 10_000_000

// FlowControl represents special flow control signals during execution.
type FlowControl int

const (
	FlowNone   FlowControl = iota
	FlowReturn             // unwind to the nearest enclosing function call
)

// StmtResult is the result of executing a single statement. Blocks,
// if-bodies and for-bodies propagate a pending FlowReturn upward
// untouched; only the function call evaluator consumes it.
type StmtResult struct {
	Flow  FlowControl
	Value types.Value // return value for FlowReturn
}

// Options configure a single evaluation run.
type Options struct {
	Time      float64   // value bound to t
	Output    io.Writer // print destination; nil means stdout
	RandSeed  int64     // seed for random; 0 seeds from the clock
	NoiseSeed int64     // seed for perlin; 0 uses the default field
}

// Evaluator executes parsed statements, collecting scene object
// declarations into an accumulator. The global environment and the
// accumulator persist across Run calls, which is what lets the REPL
// feed a session line by line; batch compiles use a fresh Evaluator
// per run.
type Evaluator struct {
	global   *Environment
	builtins *stdlib.Registry
	acc      *scene.Accumulator

	callDepth  int
	iterations int
}

// New creates an evaluator. The root environment carries the
// pre-declared constants PI, TAU and E plus the frame time t.
func New(opts Options) *Evaluator {
	var rng *rand.Rand
	if opts.RandSeed != 0 {
		rng = rand.New(rand.NewSource(opts.RandSeed))
	}

	global := NewEnvironment()
	global.Declare("PI", types.NewNumber(math.Pi))
	global.Declare("TAU", types.NewNumber(2*math.Pi))
	global.Declare("E", types.NewNumber(math.E))
	global.Declare("t", types.NewNumber(opts.Time))

	return &Evaluator{
		global: global,
		builtins: stdlib.New(stdlib.Config{
			Output:    opts.Output,
			Rand:      rng,
			NoiseSeed: opts.NoiseSeed,
		}),
		acc: scene.NewAccumulator(),
	}
}

// Run executes the program's top-level statements in order. A top-level
// return stops the program early; its value is discarded.
func (e *Evaluator) Run(prog sdl.Program) error {
	_, err := e.execBlock(prog, e.global)
	return err
}

// Accumulator returns the scene declarations collected so far.
func (e *Evaluator) Accumulator() *scene.Accumulator {
	return e.acc
}

// EvalExpression evaluates a single expression against the global
// environment. The REPL uses this to print expression results; state
// from earlier Run calls stays visible.
func (e *Evaluator) EvalExpression(expr sdl.Expr) (types.Value, error) {
	return e.evalExpr(expr, e.global)
}

// execBlock runs a statement sequence, stopping at the first error or
// pending flow signal.
func (e *Evaluator) execBlock(stmts []sdl.Stmt, env *Environment) (StmtResult, error) {
	for _, stmt := range stmts {
		res, err := e.execStmt(stmt, env)
		if err != nil {
			return StmtResult{}, err
		}
		if res.Flow != FlowNone {
			return res, nil
		}
	}
	return StmtResult{}, nil
}

func (e *Evaluator) execStmt(stmt sdl.Stmt, env *Environment) (StmtResult, error) {
	switch s := stmt.(type) {
	case *sdl.LetStmt:
		v, err := e.evalExpr(s.Value, env)
		if err != nil {
			return StmtResult{}, err
		}
		env.Declare(s.Name, v)
		return StmtResult{}, nil

	case *sdl.AssignStmt:
		v, err := e.evalExpr(s.Value, env)
		if err != nil {
			return StmtResult{}, err
		}
		env.Set(s.Name, v)
		return StmtResult{}, nil

	case *sdl.ExprStmt:
		_, err := e.evalExpr(s.Expr, env)
		return StmtResult{}, err

	case *sdl.BlockStmt:
		return e.execBlock(s.Body, env.NewChild())

	case *sdl.IfStmt:
		return e.execIf(s, env)

	case *sdl.ForStmt:
		return e.execFor(s, env)

	case *sdl.FnStmt:
		env.Declare(s.Name, types.NewFunction(&UserFunction{
			Name:   s.Name,
			Params: s.Params,
			Body:   s.Body,
			Env:    env,
		}))
		return StmtResult{}, nil

	case *sdl.ReturnStmt:
		val := types.Unit
		if s.Value != nil {
			v, err := e.evalExpr(s.Value, env)
			if err != nil {
				return StmtResult{}, err
			}
			val = v
		}
		return StmtResult{Flow: FlowReturn, Value: val}, nil

	case *sdl.ObjectStmt:
		fields, err := e.evalDict(s.Body, env)
		if err != nil {
			return StmtResult{}, err
		}
		line, col := s.Pos()
		if err := e.acc.Declare(s.Kind, fields, line, col); err != nil {
			return StmtResult{}, err
		}
		return StmtResult{}, nil
	}
	return StmtResult{}, fmt.Errorf("unexpected statement node %T", stmt)
}

// execIf evaluates an if/else-if/else chain: the first branch whose
// condition is truthy runs in a fresh child scope. A nil condition is
// the catch-all else.
func (e *Evaluator) execIf(s *sdl.IfStmt, env *Environment) (StmtResult, error) {
	for _, br := range s.Branches {
		if br.Cond != nil {
			cond, err := e.evalExpr(br.Cond, env)
			if err != nil {
				return StmtResult{}, err
			}
			if !cond.Truthy() {
				continue
			}
		}
		return e.execBlock(br.Body, env.NewChild())
	}
	return StmtResult{}, nil
}

// execFor runs a bounded range loop. Both bounds evaluate once before
// the loop, floor to integers, and the upper bound is exclusive. Each
// iteration gets a fresh child scope with the loop variable declared.
func (e *Evaluator) execFor(s *sdl.ForStmt, env *Environment) (StmtResult, error) {
	from, err := e.evalExpr(s.From, env)
	if err != nil {
		return StmtResult{}, err
	}
	to, err := e.evalExpr(s.To, env)
	if err != nil {
		return StmtResult{}, err
	}
	if from.Type() != types.TypeNumber || to.Type() != types.TypeNumber {
		line, col := s.Pos()
		return StmtResult{}, types.NewTypeMismatchError(fmt.Sprintf(
			"for bounds must be numbers, got %s and %s", from.Type(), to.Type())).At(line, col)
	}

	lower := int(math.Floor(from.AsNumber()))
	upper := int(math.Floor(to.AsNumber()))
	for i := lower; i < upper; i++ {
		e.iterations++
		if e.iterations > MaxIterations {
			line, col := s.Pos()
			return StmtResult{}, types.NewIterationLimitError(MaxIterations).At(line, col)
		}

		iter := env.NewChild()
		iter.Declare(s.Var, types.NewNumber(float64(i)))
		res, err := e.execBlock(s.Body, iter)
		if err != nil {
			return StmtResult{}, err
		}
		if res.Flow != FlowNone {
			return res, nil
		}
	}
	return StmtResult{}, nil
}

func (e *Evaluator) evalExpr(expr sdl.Expr, env *Environment) (types.Value, error) {
	switch x := expr.(type) {
	case *sdl.LiteralExpr:
		switch x.Token {
		case sdl.TokenNumber:
			return types.NewNumber(x.NumVal), nil
		case sdl.TokenString:
			return types.NewString(x.StrVal), nil
		case sdl.TokenTrue:
			return types.NewBool(true), nil
		case sdl.TokenFalse:
			return types.NewBool(false), nil
		}
		return types.Unit, fmt.Errorf("unexpected literal token %s", x.Token)

	case *sdl.IdentExpr:
		v, err := env.Get(x.Name)
		if err != nil {
			return types.Unit, errAt(err, x)
		}
		return v, nil

	case *sdl.UnaryExpr:
		return e.evalUnary(x, env)

	case *sdl.BinaryExpr:
		return e.evalBinary(x, env)

	case *sdl.VectorExpr:
		return e.evalVector(x, env)

	case *sdl.ArrayExpr:
		arr := types.NewArrayValue()
		for _, el := range x.Elems {
			v, err := e.evalExpr(el, env)
			if err != nil {
				return types.Unit, err
			}
			arr.Push(v)
		}
		return types.NewArray(arr), nil

	case *sdl.DictExpr:
		d, err := e.evalDict(x, env)
		if err != nil {
			return types.Unit, err
		}
		return types.NewDictValue(d), nil

	case *sdl.IndexExpr:
		return e.evalIndex(x, env)

	case *sdl.CallExpr:
		return e.evalCall(x, env)
	}
	return types.Unit, fmt.Errorf("unexpected expression node %T", expr)
}

func (e *Evaluator) evalUnary(x *sdl.UnaryExpr, env *Environment) (types.Value, error) {
	v, err := e.evalExpr(x.Operand, env)
	if err != nil {
		return types.Unit, err
	}
	switch x.Op {
	case sdl.TokenMinus:
		switch v.Type() {
		case types.TypeNumber:
			return types.NewNumber(-v.AsNumber()), nil
		case types.TypeVector:
			return types.NewVector(v.AsVector().Neg()), nil
		}
		line, col := x.Pos()
		return types.Unit, types.NewTypeMismatchError(
			fmt.Sprintf("cannot negate a %s", v.Type())).At(line, col)
	case sdl.TokenBang:
		return types.NewBool(!v.Truthy()), nil
	}
	return types.Unit, fmt.Errorf("unexpected unary operator %s", x.Op)
}

func (e *Evaluator) evalVector(x *sdl.VectorExpr, env *Environment) (types.Value, error) {
	comps := [3]float64{}
	for i, comp := range []sdl.Expr{x.X, x.Y, x.Z} {
		v, err := e.evalExpr(comp, env)
		if err != nil {
			return types.Unit, err
		}
		if v.Type() != types.TypeNumber {
			return types.Unit, errAt(types.NewTypeMismatchError(
				fmt.Sprintf("vector components must be numbers, got %s", v.Type())), comp)
		}
		comps[i] = v.AsNumber()
	}
	return types.NewVector(types.Vector{X: comps[0], Y: comps[1], Z: comps[2]}), nil
}

// evalDict evaluates a dictionary literal into an ordered dict. Any
// entry error aborts the whole literal.
func (e *Evaluator) evalDict(x *sdl.DictExpr, env *Environment) (*types.Dict, error) {
	d := types.NewDict()
	for _, entry := range x.Entries {
		v, err := e.evalExpr(entry.Value, env)
		if err != nil {
			return nil, err
		}
		d.Set(entry.Key, v)
	}
	return d, nil
}

func (e *Evaluator) evalIndex(x *sdl.IndexExpr, env *Environment) (types.Value, error) {
	target, err := e.evalExpr(x.Target, env)
	if err != nil {
		return types.Unit, err
	}
	index, err := e.evalExpr(x.Index, env)
	if err != nil {
		return types.Unit, err
	}
	line, col := x.Pos()

	switch target.Type() {
	case types.TypeArray:
		if index.Type() != types.TypeNumber {
			return types.Unit, types.NewTypeMismatchError(
				fmt.Sprintf("array index must be a number, got %s", index.Type())).At(line, col)
		}
		arr := target.AsArray()
		i := int(math.Floor(index.AsNumber()))
		if i < 0 || i >= arr.Len() {
			return types.Unit, types.NewIndexError(
				fmt.Sprintf("index %d out of range (length %d)", i, arr.Len())).At(line, col)
		}
		return arr.Elems[i], nil

	case types.TypeDict:
		if index.Type() != types.TypeString {
			return types.Unit, types.NewTypeMismatchError(
				fmt.Sprintf("dict key must be a string, got %s", index.Type())).At(line, col)
		}
		key := index.AsString()
		v, ok := target.AsDict().Get(key)
		if !ok {
			return types.Unit, types.NewKeyError(key).At(line, col)
		}
		return v, nil

	case types.TypeString:
		if index.Type() != types.TypeNumber {
			return types.Unit, types.NewTypeMismatchError(
				fmt.Sprintf("string index must be a number, got %s", index.Type())).At(line, col)
		}
		runes := []rune(target.AsString())
		i := int(math.Floor(index.AsNumber()))
		if i < 0 || i >= len(runes) {
			return types.Unit, types.NewIndexError(
				fmt.Sprintf("index %d out of range (length %d)", i, len(runes))).At(line, col)
		}
		return types.NewString(string(runes[i])), nil
	}
	return types.Unit, types.NewTypeMismatchError(
		fmt.Sprintf("cannot index a %s", target.Type())).At(line, col)
}

// evalCall resolves a call name in the environment first, then among
// the builtins. Arguments evaluate eagerly, left to right.
func (e *Evaluator) evalCall(x *sdl.CallExpr, env *Environment) (types.Value, error) {
	args := make([]types.Value, len(x.Args))
	for i, argExpr := range x.Args {
		v, err := e.evalExpr(argExpr, env)
		if err != nil {
			return types.Unit, err
		}
		args[i] = v
	}
	line, col := x.Pos()

	if v, err := env.Get(x.Name); err == nil {
		if v.Type() != types.TypeFunction {
			return types.Unit, types.NewTypeMismatchError(
				fmt.Sprintf("'%s' is not a function, got %s", x.Name, v.Type())).At(line, col)
		}
		fn, ok := v.AsFunction().(*UserFunction)
		if !ok {
			return types.Unit, types.NewTypeMismatchError(
				fmt.Sprintf("'%s' is not callable", x.Name)).At(line, col)
		}
		return e.callUser(fn, args, line, col)
	}

	if fn, ok := e.builtins.Lookup(x.Name); ok {
		v, err := fn(args)
		if err != nil {
			return types.Unit, errAt(err, x)
		}
		return v, nil
	}
	return types.Unit, types.NewUnknownFunctionError(x.Name).At(line, col)
}

// callUser invokes a user-defined function in a child of its captured
// environment. The result is the pending return value, or unit when
// the body runs to completion.
func (e *Evaluator) callUser(fn *UserFunction, args []types.Value, line, col int) (types.Value, error) {
	if len(args) != len(fn.Params) {
		return types.Unit, types.NewArityError(fmt.Sprintf(
			"%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))).At(line, col)
	}

	e.callDepth++
	defer func() { e.callDepth-- }()
	if e.callDepth > MaxCallDepth {
		return types.Unit, types.NewRecursionError(MaxCallDepth).At(line, col)
	}

	local := fn.Env.NewChild()
	for i, param := range fn.Params {
		local.Declare(param, args[i])
	}

	res, err := e.execBlock(fn.Body, local)
	if err != nil {
		return types.Unit, err
	}
	if res.Flow == FlowReturn {
		return res.Value, nil
	}
	return types.Unit, nil
}

func (e *Evaluator) evalBinary(x *sdl.BinaryExpr, env *Environment) (types.Value, error) {
	// Logical operators short-circuit on truthiness.
	switch x.Op {
	case sdl.TokenAnd:
		left, err := e.evalExpr(x.Left, env)
		if err != nil {
			return types.Unit, err
		}
		if !left.Truthy() {
			return types.NewBool(false), nil
		}
		right, err := e.evalExpr(x.Right, env)
		if err != nil {
			return types.Unit, err
		}
		return types.NewBool(right.Truthy()), nil

	case sdl.TokenOr:
		left, err := e.evalExpr(x.Left, env)
		if err != nil {
			return types.Unit, err
		}
		if left.Truthy() {
			return types.NewBool(true), nil
		}
		right, err := e.evalExpr(x.Right, env)
		if err != nil {
			return types.Unit, err
		}
		return types.NewBool(right.Truthy()), nil
	}

	left, err := e.evalExpr(x.Left, env)
	if err != nil {
		return types.Unit, err
	}
	right, err := e.evalExpr(x.Right, env)
	if err != nil {
		return types.Unit, err
	}

	v, err := binaryOp(x.Op, left, right)
	if err != nil {
		return types.Unit, errAt(err, x)
	}
	return v, nil
}

// opSymbol maps operator tokens to their source text for error messages.
var opSymbol = map[sdl.TokenType]string{
	sdl.TokenPlus:    "+",
	sdl.TokenMinus:   "-",
	sdl.TokenStar:    "*",
	sdl.TokenSlash:   "/",
	sdl.TokenPercent: "%",
	sdl.TokenLt:      "<",
	sdl.TokenLte:     "<=",
	sdl.TokenGt:      ">",
	sdl.TokenGte:     ">=",
}

func binaryOp(op sdl.TokenType, left, right types.Value) (types.Value, error) {
	switch op {
	case sdl.TokenPlus:
		return addValues(left, right)
	case sdl.TokenMinus:
		return subValues(left, right)
	case sdl.TokenStar:
		return mulValues(left, right)
	case sdl.TokenSlash:
		return divValues(left, right)
	case sdl.TokenPercent:
		if left.Type() == types.TypeNumber && right.Type() == types.TypeNumber {
			return types.NewNumber(math.Mod(left.AsNumber(), right.AsNumber())), nil
		}
		return types.Unit, opTypeError("%", left, right)
	case sdl.TokenEq:
		return types.NewBool(left.Equal(right)), nil
	case sdl.TokenNeq:
		return types.NewBool(!left.Equal(right)), nil
	case sdl.TokenLt, sdl.TokenLte, sdl.TokenGt, sdl.TokenGte:
		return compareValues(op, left, right)
	}
	return types.Unit, fmt.Errorf("unexpected binary operator %s", op)
}

func addValues(l, r types.Value) (types.Value, error) {
	switch {
	case l.Type() == types.TypeNumber && r.Type() == types.TypeNumber:
		return types.NewNumber(l.AsNumber() + r.AsNumber()), nil
	case l.Type() == types.TypeString && r.Type() == types.TypeString:
		return types.NewString(l.AsString() + r.AsString()), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeVector:
		return types.NewVector(l.AsVector().Add(r.AsVector())), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeNumber:
		return types.NewVector(l.AsVector().AddScalar(r.AsNumber())), nil
	case l.Type() == types.TypeNumber && r.Type() == types.TypeVector:
		return types.NewVector(r.AsVector().AddScalar(l.AsNumber())), nil
	case l.Type() == types.TypeColor && r.Type() == types.TypeColor:
		return types.NewColor(l.AsColor().Add(r.AsColor())), nil
	}
	return types.Unit, opTypeError("+", l, r)
}

func subValues(l, r types.Value) (types.Value, error) {
	switch {
	case l.Type() == types.TypeNumber && r.Type() == types.TypeNumber:
		return types.NewNumber(l.AsNumber() - r.AsNumber()), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeVector:
		return types.NewVector(l.AsVector().Sub(r.AsVector())), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeNumber:
		return types.NewVector(l.AsVector().AddScalar(-r.AsNumber())), nil
	}
	return types.Unit, opTypeError("-", l, r)
}

func mulValues(l, r types.Value) (types.Value, error) {
	switch {
	case l.Type() == types.TypeNumber && r.Type() == types.TypeNumber:
		return types.NewNumber(l.AsNumber() * r.AsNumber()), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeVector:
		return types.NewVector(l.AsVector().Mul(r.AsVector())), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeNumber:
		return types.NewVector(l.AsVector().Scale(r.AsNumber())), nil
	case l.Type() == types.TypeNumber && r.Type() == types.TypeVector:
		return types.NewVector(r.AsVector().Scale(l.AsNumber())), nil
	case l.Type() == types.TypeColor && r.Type() == types.TypeNumber:
		return types.NewColor(l.AsColor().Scale(r.AsNumber())), nil
	case l.Type() == types.TypeNumber && r.Type() == types.TypeColor:
		return types.NewColor(r.AsColor().Scale(l.AsNumber())), nil
	case l.Type() == types.TypeColor && r.Type() == types.TypeVector:
		return types.NewColor(l.AsColor().MulVec(r.AsVector())), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeColor:
		return types.NewColor(r.AsColor().MulVec(l.AsVector())), nil
	}
	return types.Unit, opTypeError("*", l, r)
}

func divValues(l, r types.Value) (types.Value, error) {
	switch {
	case l.Type() == types.TypeNumber && r.Type() == types.TypeNumber:
		return types.NewNumber(l.AsNumber() / r.AsNumber()), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeVector:
		return types.NewVector(l.AsVector().Div(r.AsVector())), nil
	case l.Type() == types.TypeVector && r.Type() == types.TypeNumber:
		return types.NewVector(l.AsVector().Scale(1 / r.AsNumber())), nil
	}
	return types.Unit, opTypeError("/", l, r)
}

// compareValues orders two Numbers or two Strings. NaN compares false
// against everything, including itself.
func compareValues(op sdl.TokenType, l, r types.Value) (types.Value, error) {
	var cmp int
	switch {
	case l.Type() == types.TypeNumber && r.Type() == types.TypeNumber:
		a, b := l.AsNumber(), r.AsNumber()
		if math.IsNaN(a) || math.IsNaN(b) {
			return types.NewBool(false), nil
		}
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	case l.Type() == types.TypeString && r.Type() == types.TypeString:
		cmp = strings.Compare(l.AsString(), r.AsString())
	default:
		return types.Unit, opTypeError(opSymbol[op], l, r)
	}

	switch op {
	case sdl.TokenLt:
		return types.NewBool(cmp < 0), nil
	case sdl.TokenLte:
		return types.NewBool(cmp <= 0), nil
	case sdl.TokenGt:
		return types.NewBool(cmp > 0), nil
	case sdl.TokenGte:
		return types.NewBool(cmp >= 0), nil
	}
	return types.Unit, fmt.Errorf("unexpected comparison operator %s", op)
}

func opTypeError(op string, l, r types.Value) error {
	return types.NewTypeMismatchError(fmt.Sprintf(
		"operator '%s' is not defined for %s and %s", op, l.Type(), r.Type()))
}

// errAt stamps the node's position onto a script error that does not
// carry one yet.
func errAt(err error, n sdl.Node) error {
	var se *types.ScriptError
	if errors.As(err, &se) {
		line, col := n.Pos()
		return se.At(line, col)
	}
	return err
}
