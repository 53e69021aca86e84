package emit

import (
	"strings"

	"github.com/Icarogamer2441/snake/internal/compile"
)

// structCastDef builds a record instance without going through the
// constructor and copies the mapping's entries onto it. Emitted when the
// lowered output contains a record cast.
const structCastDef = `def __struct_cast(cls, mapping):
    obj = cls.__new__(cls)
    for key, value in mapping.items():
        setattr(obj, key, value)
    return obj
`

// helperDefs back the .add/.remove pseudo-methods across container kinds.
const helperDefs = `def __snake_add(container, value):
    if isinstance(container, list):
        container.append(value)
    elif isinstance(container, set):
        container.add(value)
    elif isinstance(container, dict):
        container.update(value)
    else:
        container += value
    return container

def __snake_remove(container, value):
    if isinstance(container, dict):
        container.pop(value, None)
    else:
        container.remove(value)
    return container
`

const entryCall = `if __name__ == "__main__":
    main()
`

// Emit renders the final host text for a compilation result: the runtime
// helpers the lowered output needs, the lowered source itself, and the entry
// point call when an exported main exists.
func Emit(r *compile.Result) string {
	var b strings.Builder

	if r.NeedsStructCast {
		b.WriteString(structCastDef)
		b.WriteString("\n")
	}
	if r.NeedsHelpers {
		b.WriteString(helperDefs)
		b.WriteString("\n")
	}

	b.WriteString(r.Source)
	if !strings.HasSuffix(r.Source, "\n") {
		b.WriteString("\n")
	}

	if r.Table.HasMain {
		b.WriteString("\n")
		b.WriteString(entryCall)
	}
	return b.String()
}
