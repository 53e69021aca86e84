package types

// Built-in callable and method result types. The checker consults these fixed
// tables when it types calls it has no harvested signature for.

// builtinFuncs maps global builtin names to their result types. An empty
// result means the builtin's type depends on its receiver/arguments and is
// resolved elsewhere.
var builtinFuncs = map[string]string{
	"len":       IntType,
	"str":       StringType,
	"int":       IntType,
	"float":     FloatType,
	"bool":      BoolType,
	"input":     StringType,
	"print":     NullType,
	"range":     "list[int]",
	"sorted":    ListType,
	"reversed":  ListType,
	"enumerate": "list[tuple[int, any]]",
	"abs":       "",
	"repr":      StringType,
	"type":      StringType,
	"list":      ListType,
	"dict":      DictType,
	"tuple":     TupleType,
	"set":       SetType,
}

// methodResult resolves the result type of a built-in method call on a
// receiver of the given type string. Transform methods return the receiver's
// container kind, pop/get unwrap one parameter level, predicates return bool,
// counters return int, and keys/values/items wrap their parameter
// accordingly. Returns "" when the method is unknown.
func methodResult(recv, method string) string {
	base := BaseName(recv)
	params := Params(recv)

	elem := func(i int) string {
		if i < len(params) {
			return params[i]
		}
		return TopType
	}

	switch base {
	case StringType:
		switch method {
		case "upper", "lower", "strip", "lstrip", "rstrip", "title",
			"capitalize", "replace", "format", "join", "zfill":
			return StringType
		case "split", "splitlines", "rsplit":
			return "list[str]"
		case "startswith", "endswith", "isdigit", "isalpha", "isalnum", "isspace":
			return BoolType
		case "count", "find", "rfind", "index":
			return IntType
		}

	case ListType, SetType:
		switch method {
		case "append", "extend", "insert", "sort", "reverse", "clear", "remove", "add":
			return NullType
		case "pop":
			return elem(0)
		case "index", "count":
			return IntType
		case "copy":
			return recv
		}

	case DictType:
		switch method {
		case "get", "pop", "setdefault":
			return elem(1)
		case "keys":
			return ListType + "[" + elem(0) + "]"
		case "values":
			return ListType + "[" + elem(1) + "]"
		case "items":
			return ListType + "[" + TupleType + "[" + elem(0) + ", " + elem(1) + "]]"
		case "clear", "update":
			return NullType
		case "copy":
			return recv
		}
	}
	return ""
}
