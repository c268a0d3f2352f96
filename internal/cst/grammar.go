package cst

import "github.com/hassan/veyra/internal/token"

// Grammar kind names. These are concrete-syntax labels, matched by the
// reducer in package ast; they intentionally don't carry semantic meaning
// of their own.
const (
	KindProgram        = "program"
	KindImportDecl     = "importDecl"
	KindNamedImports   = "namedImports"
	KindExportForward  = "exportForward"
	KindExportBrace    = "exportBrace"
	KindExportInline   = "exportInline"
	KindTypeDecl       = "typeDecl"
	KindConstDecl      = "constDecl"
	KindFuncDecl       = "funcDecl"
	KindTypeParams     = "typeParams"
	KindTypeParam      = "typeParam"
	KindParamList      = "paramList"
	KindParam          = "param"
	KindUnionType      = "unionType"
	KindArrayType      = "arrayType"
	KindStructType     = "structType"
	KindFieldDecl      = "fieldDecl"
	KindTupleOrFunc    = "tupleOrFunc"
	KindNamedType      = "namedType"
	KindTypeArgs       = "typeArgs"
	KindBinarySpine    = "binarySpine"
	KindBinaryTail     = "binaryTail"
	KindUnaryExpr      = "unaryExpr"
	KindPostfixExpr    = "postfixExpr"
	KindCallArgs       = "callArgs"
	KindIndexOp        = "indexOp"
	KindMemberOp       = "memberOp"
	KindGroupOrTuple   = "groupOrTuple"
	KindArrayLiteral   = "arrayLiteral"
	KindStructLiteral  = "structLiteral"
	KindFieldInit      = "fieldInit"
	KindIfExpr         = "ifExpr"
	KindLetExpr        = "letExpr"
	KindIdentifierList = "identifierList"
	KindLambdaExpr     = "lambdaExpr"
	KindLambdaParam    = "lambdaParam"
	KindBlockExpr      = "blockExpr"

	KindBlock        = "block"
	KindBreakStmt    = "breakStmt"
	KindContinueStmt = "continueStmt"
	KindReturnStmt   = "returnStmt"
	KindThrowStmt    = "throwStmt"
	KindWhileStmt    = "whileStmt"
	KindDoWhileStmt  = "doWhileStmt"
	KindForStmt      = "forStmt"
	KindTryCatchStmt = "tryCatchStmt"
	KindNoopStmt     = "noopStmt"
	KindExprStmt     = "exprStmt"
)

// Program parses a full module: a sequence of declarations up to EOF.
func Program() Combinator {
	return Seq(KindProgram, Repeat("declarations", declaration(), 0, nil), Tok(token.EOF))
}

func declaration() Combinator {
	return Select("declaration", importDecl(), exportDecl(), typeDecl(), constDecl(), funcDecl())
}

func importDecl() Combinator {
	return Seq(KindImportDecl,
		Tok(token.Import),
		Must(Select("importClause", namedImports(), Tok(token.Identifier)), "expected import names"),
		Must(Tok(token.From), "expected 'from' in import declaration"),
		Must(Tok(token.String), "expected module path string"),
		Must(Newline(), "expected newline after import declaration"),
	)
}

func namedImports() Combinator {
	return Seq(KindNamedImports,
		Tok(token.LBrace),
		Must(Repeat(KindIdentifierList, Tok(token.Identifier), 1, Tok(token.Comma)), "expected at least one imported name"),
		Must(Tok(token.RBrace), "expected '}' to close import list"),
	)
}

func exportDecl() Combinator {
	return Seq("exportDecl", Tok(token.Export), Must(Select("exportBody",
		exportForwardAll(),
		exportBraceBody(),
		Select("exportInlineBody", typeDecl(), constDecl(), funcDecl()),
	), "expected export body"))
}

func exportForwardAll() Combinator {
	return Seq(KindExportForward,
		Tok(token.Star),
		Must(Tok(token.From), "expected 'from' after 'export *'"),
		Must(Tok(token.String), "expected module path string"),
		Must(Newline(), "expected newline after export-forward declaration"),
	)
}

func exportBraceBody() Combinator {
	return Seq(KindExportBrace,
		Tok(token.LBrace),
		Must(Repeat(KindIdentifierList, Tok(token.Identifier), 1, Tok(token.Comma)), "expected at least one exported name"),
		Must(Tok(token.RBrace), "expected '}' to close export list"),
		Optional("fromClause", Seq("from", Tok(token.From), Must(Tok(token.String), "expected module path string"))),
		Must(Newline(), "expected newline after export declaration"),
	)
}

func typeDecl() Combinator {
	return Seq(KindTypeDecl,
		Tok(token.Type),
		Must(Tok(token.Identifier), "expected type name"),
		Optional(KindTypeParams, typeParams()),
		Must(Tok(token.Assign), "expected '=' in type declaration"),
		Must(typeExpr(), "expected type expression"),
		Must(Newline(), "expected newline after type declaration"),
	)
}

func constDecl() Combinator {
	return Seq(KindConstDecl,
		Tok(token.Const),
		Must(Tok(token.Identifier), "expected constant name"),
		Optional("typeAnnotation", Seq("annotation", Tok(token.Colon), Must(typeExpr(), "expected type after ':'"))),
		Must(Tok(token.Assign), "expected '=' in constant declaration"),
		Must(expr(), "expected constant initializer"),
		Must(Newline(), "expected newline after constant declaration"),
	)
}

func funcDecl() Combinator {
	return Seq(KindFuncDecl,
		Tok(token.Func),
		Must(Tok(token.Identifier), "expected function name"),
		Optional(KindTypeParams, typeParams()),
		Must(Tok(token.LParen), "expected '(' in function declaration"),
		Optional(KindParamList, Repeat(KindParamList, param(), 1, Tok(token.Comma))),
		Must(Tok(token.RParen), "expected ')' in function declaration"),
		Optional("returnType", Seq("ret", Tok(token.Arrow), Must(typeExpr(), "expected return type after '->'"))),
		Must(Tok(token.Assign), "expected '=' before function body"),
		Must(expr(), "expected function body expression"),
		Must(Newline(), "expected newline after function declaration"),
	)
}

func typeParams() Combinator {
	return Seq(KindTypeParams,
		Tok(token.Less),
		Must(Repeat(KindTypeParams, typeParam(), 1, Tok(token.Comma)), "expected at least one type parameter"),
		Must(Tok(token.Greater), "expected '>' to close type parameter list"),
	)
}

func typeParam() Combinator {
	return Seq(KindTypeParam,
		Tok(token.Identifier),
		Optional("constraint", Seq("bound", Tok(token.Colon), Must(typeExpr(), "expected constraint type"))),
	)
}

func param() Combinator {
	return Seq(KindParam,
		Tok(token.Identifier),
		Must(Tok(token.Colon), "expected ':' before parameter type"),
		Must(typeExpr(), "expected parameter type"),
	)
}

// typeExpr := unionMember ('|' unionMember)*
func typeExpr() Combinator {
	return Lazy(func() Combinator {
		return Repeat(KindUnionType, typeMember(), 1, Tok(token.Pipe))
	})
}

func typeMember() Combinator {
	return Select("typeMember", arrayType(), structType(), tupleOrFuncType(), namedType())
}

func arrayType() Combinator {
	return Seq(KindArrayType,
		Tok(token.LBracket),
		Must(typeExpr(), "expected element type"),
		Must(Tok(token.RBracket), "expected ']' to close array type"),
	)
}

func structType() Combinator {
	return Seq(KindStructType,
		Tok(token.LBrace),
		Repeat("fields", fieldDecl(), 0, Newline()),
		Must(Tok(token.RBrace), "expected '}' to close struct type"),
	)
}

func fieldDecl() Combinator {
	return Seq(KindFieldDecl,
		Tok(token.Identifier),
		Must(Tok(token.Colon), "expected ':' before field type"),
		Must(typeExpr(), "expected field type"),
	)
}

// tupleOrFuncType := '(' (typeExpr (',' typeExpr)*)? ')' ('->' typeExpr)?
// A trailing '->' makes this a function type; otherwise a parenthesized
// single type is a grouping and more than one is a tuple — the reducer
// decides which, since the concrete shape is identical either way.
func tupleOrFuncType() Combinator {
	return Seq(KindTupleOrFunc,
		Tok(token.LParen),
		Optional("elements", Repeat("elements", typeExpr(), 1, Tok(token.Comma))),
		Must(Tok(token.RParen), "expected ')' to close parenthesized type"),
		Optional("arrow", Seq("ret", Tok(token.Arrow), Must(typeExpr(), "expected return type after '->'"))),
	)
}

func namedType() Combinator {
	return Seq(KindNamedType,
		Tok(token.Identifier),
		Optional(KindTypeArgs, Seq(KindTypeArgs, Tok(token.Less),
			Must(Repeat("args", typeExpr(), 1, Tok(token.Comma)), "expected at least one type argument"),
			Must(Tok(token.Greater), "expected '>' to close type argument list"))),
	)
}

// expr is the top-level expression production. Binary operators are parsed
// into a flat left-spine (this function) and re-associated by precedence
// afterward (package precedence) — the parser itself never consults a
// precedence table.
func expr() Combinator {
	return Lazy(func() Combinator {
		return Select("expr", ifExpr(), letExpr(), blockExpr(), binarySpine())
	})
}

// blockExpr lets a brace-delimited statement sequence stand wherever an
// expression is expected (function/lambda bodies, if-branches).
func blockExpr() Combinator {
	return Seq(KindBlockExpr, block())
}

// block := '{' statement* '}'
func block() Combinator {
	return Seq(KindBlock,
		Tok(token.LBrace),
		Repeat("statements", statement(), 0, nil),
		Must(Tok(token.RBrace), "expected '}' to close block"),
	)
}

func statement() Combinator {
	return Lazy(func() Combinator {
		return Select("statement",
			block(),
			breakStmt(), continueStmt(),
			returnStmt(), throwStmt(),
			whileStmt(), doWhileStmt(), forStmt(),
			tryCatchStmt(),
			noopStmt(),
			exprStmt(),
		)
	})
}

func breakStmt() Combinator {
	return Seq(KindBreakStmt, Tok(token.Break), Must(Newline(), "expected newline after 'break'"))
}

func continueStmt() Combinator {
	return Seq(KindContinueStmt, Tok(token.Continue), Must(Newline(), "expected newline after 'continue'"))
}

func returnStmt() Combinator {
	return Seq(KindReturnStmt,
		Tok(token.Return),
		Optional("value", expr()),
		Must(Newline(), "expected newline after return statement"),
	)
}

func throwStmt() Combinator {
	return Seq(KindThrowStmt,
		Tok(token.Throw),
		Must(expr(), "expected expression after 'throw'"),
		Must(Newline(), "expected newline after throw statement"),
	)
}

// whileStmt requires parens around the condition — a bare identifier
// condition directly followed by the body's '{' would otherwise be
// ambiguous with a struct literal (primaryExpr's structLiteral alternative
// also matches Identifier '{').
func whileStmt() Combinator {
	return Seq(KindWhileStmt,
		Tok(token.While),
		Must(Tok(token.LParen), "expected '(' after 'while'"),
		Must(expr(), "expected condition after 'while'"),
		Must(Tok(token.RParen), "expected ')' to close while-condition"),
		Must(block(), "expected block after while-condition"),
	)
}

func doWhileStmt() Combinator {
	return Seq(KindDoWhileStmt,
		Tok(token.Do),
		Must(block(), "expected block after 'do'"),
		Must(Tok(token.While), "expected 'while' after do-block"),
		Must(expr(), "expected condition after 'while'"),
		Must(Newline(), "expected newline after do-while statement"),
	)
}

// forStmt := 'for' '(' Identifier 'in' expr ')' block
func forStmt() Combinator {
	return Seq(KindForStmt,
		Tok(token.For),
		Must(Tok(token.LParen), "expected '(' after 'for'"),
		Must(Tok(token.Identifier), "expected loop variable name"),
		Must(Tok(token.In), "expected 'in' in for-statement"),
		Must(expr(), "expected iterable expression"),
		Must(Tok(token.RParen), "expected ')' to close for-header"),
		Must(block(), "expected block after for-header"),
	)
}

func tryCatchStmt() Combinator {
	return Seq(KindTryCatchStmt,
		Tok(token.Try),
		Must(block(), "expected block after 'try'"),
		Must(Tok(token.Catch), "expected 'catch' after try-block"),
		Must(Tok(token.LParen), "expected '(' after 'catch'"),
		Must(Tok(token.Identifier), "expected caught-value name"),
		Must(Tok(token.RParen), "expected ')' after catch-parameter"),
		Must(block(), "expected block after 'catch'"),
		Optional("finallyClause", Seq("finally", Tok(token.Finally), Must(block(), "expected block after 'finally'"))),
	)
}

// noopStmt matches a bare newline/semicolon with nothing before it: an
// empty statement.
func noopStmt() Combinator {
	return Seq(KindNoopStmt, Newline())
}

func exprStmt() Combinator {
	return Seq(KindExprStmt, expr(), Must(Newline(), "expected newline after statement"))
}

func ifExpr() Combinator {
	return Seq(KindIfExpr,
		Tok(token.If),
		Must(expr(), "expected condition after 'if'"),
		Must(Tok(token.Then), "expected 'then'"),
		Must(expr(), "expected expression after 'then'"),
		Must(Tok(token.Else), "expected 'else'"),
		Must(expr(), "expected expression after 'else'"),
	)
}

// letExpr covers both the let-expression ("let name = value in body") and
// the var-declaration expression ("let name = value" with no body — the
// binding scopes over the rest of the enclosing block instead). The two
// share one production because they only diverge at an optional trailing
// clause; the reducer tells them apart by whether that clause matched.
func letExpr() Combinator {
	return Seq(KindLetExpr,
		Tok(token.Let),
		Must(Tok(token.Identifier), "expected bound name after 'let'"),
		Optional("typeAnnotation", Seq("annotation", Tok(token.Colon), Must(typeExpr(), "expected type after ':'"))),
		Must(Tok(token.Assign), "expected '=' in let expression"),
		Must(expr(), "expected bound expression"),
		Optional("inClause", Seq("in", Tok(token.In), Must(expr(), "expected body expression after 'in'"))),
	)
}

func binaryOperator() Combinator {
	return Select("binaryOperator",
		Tok(token.Assign), Tok(token.Apply),
		Tok(token.OrOr), Tok(token.AndAnd),
		Tok(token.Eq), Tok(token.NotEq), Tok(token.Less), Tok(token.LessEq), Tok(token.Greater), Tok(token.GreaterEq),
		Tok(token.Plus), Tok(token.Minus),
		Tok(token.Star), Tok(token.Slash), Tok(token.Percent),
		Tok(token.Amp), Tok(token.Pipe), Tok(token.Caret),
	)
}

func binarySpine() Combinator {
	return Seq(KindBinarySpine,
		unaryExpr(),
		Repeat(KindBinaryTail, Seq(KindBinaryTail, binaryOperator(), Must(unaryExpr(), "expected right-hand operand")), 0, nil),
	)
}

func unaryExpr() Combinator {
	return Select("unaryExpr",
		Seq(KindUnaryExpr, Select("unaryOp", Tok(token.Bang), Tok(token.Minus), Tok(token.Tilde)),
			Must(Lazy(unaryExpr), "expected operand after unary operator")),
		postfixExpr(),
	)
}

func postfixExpr() Combinator {
	return Seq(KindPostfixExpr, primaryExpr(), Repeat("postfixOps", postfixOp(), 0, nil))
}

func postfixOp() Combinator {
	return Select("postfixOp", callArgs(), indexOp(), memberOp())
}

func callArgs() Combinator {
	return Seq(KindCallArgs,
		Tok(token.LParen),
		Optional("args", Repeat("args", expr(), 1, Tok(token.Comma))),
		Must(Tok(token.RParen), "expected ')' to close call arguments"),
	)
}

func indexOp() Combinator {
	return Seq(KindIndexOp, Tok(token.LBracket), Must(expr(), "expected index expression"), Must(Tok(token.RBracket), "expected ']'"))
}

func memberOp() Combinator {
	return Seq(KindMemberOp, Tok(token.Dot), Must(Tok(token.Identifier), "expected member name after '.'"))
}

func primaryExpr() Combinator {
	return Select("primaryExpr",
		Tok(token.Number), Tok(token.String), Tok(token.Char), Tok(token.True), Tok(token.False),
		structLiteral(),
		lambdaExpr(),
		groupOrTuple(),
		arrayLiteral(),
		Tok(token.Identifier),
	)
}

// lambdaExpr := '(' (lambdaParam (',' lambdaParam)*)? ')' '=>' expr
// Tried before groupOrTuple/tupleOrFuncType: nothing here commits (Must)
// until the '=>' has actually been seen, so a plain parenthesized expression
// or tuple falls through to groupOrTuple untouched.
func lambdaExpr() Combinator {
	return Seq(KindLambdaExpr,
		Tok(token.LParen),
		Optional("params", Repeat(KindParamList, lambdaParam(), 0, Tok(token.Comma))),
		Tok(token.RParen),
		Tok(token.FatArrow),
		Must(expr(), "expected lambda body after '=>'"),
	)
}

func lambdaParam() Combinator {
	return Seq(KindLambdaParam, Tok(token.Identifier), Tok(token.Colon), typeExpr())
}

func groupOrTuple() Combinator {
	return Seq(KindGroupOrTuple,
		Tok(token.LParen),
		Optional("elements", Repeat("elements", expr(), 1, Tok(token.Comma))),
		Must(Tok(token.RParen), "expected ')' to close parenthesized expression"),
	)
}

func arrayLiteral() Combinator {
	return Seq(KindArrayLiteral,
		Tok(token.LBracket),
		Optional("elements", Repeat("elements", expr(), 1, Tok(token.Comma))),
		Must(Tok(token.RBracket), "expected ']' to close array literal"),
	)
}

// structLiteral := Identifier '{' (fieldInit (',' fieldInit)*)? '}'
// Distinguished from a plain identifier by requiring the '{' to appear with
// no intervening trivia other than whitespace, which SkipTrivia already
// erases — so this production simply commits once it sees Identifier '{'.
func structLiteral() Combinator {
	return Seq(KindStructLiteral,
		Tok(token.Identifier),
		Tok(token.LBrace),
		Optional("fields", Repeat("fields", fieldInit(), 1, Tok(token.Comma))),
		Must(Tok(token.RBrace), "expected '}' to close struct literal"),
	)
}

func fieldInit() Combinator {
	return Seq(KindFieldInit,
		Tok(token.Identifier),
		Must(Tok(token.Colon), "expected ':' in field initializer"),
		Must(expr(), "expected field value"),
	)
}
