package inst

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed gbz80.isa
var gbz80 string

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Load(strings.NewReader(gbz80))
	if err != nil {
		panic("inst: embedded instruction set: " + err.Error())
	}
	return t
})

// Default returns the built-in Game Boy instruction set. The table is shared
// and must not be modified.
func Default() *Table {
	return defaultTable()
}

// DefaultSource returns the text of the built-in instruction set.
func DefaultSource() string {
	return gbz80
}
