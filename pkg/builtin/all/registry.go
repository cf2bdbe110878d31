// Package all wires every built-in unit into a discovery source and exposes
// the factory table manifest-based discovery resolves against.
package all

import (
	"github.com/wehubfusion/Daedalus/pkg/builtin/constant"
	"github.com/wehubfusion/Daedalus/pkg/builtin/mathops"
	"github.com/wehubfusion/Daedalus/pkg/builtin/script"
	"github.com/wehubfusion/Daedalus/pkg/builtin/strings"
	"github.com/wehubfusion/Daedalus/pkg/discovery"
	"go.uber.org/zap"
)

// NewSource creates a static source with all built-in units registered.
func NewSource(logger *zap.Logger) *discovery.StaticSource {
	src := discovery.NewStaticSource(logger)
	src.Register("strings", "text", strings.New)
	src.Register("mathops", "math", mathops.New)
	src.Register("constant", "values", constant.New)
	src.Register("script", "code", script.New)
	return src
}

// Factories returns the built-in constructor table keyed by factory name,
// for use with manifest-based discovery.
func Factories() discovery.FactoryTable {
	return discovery.FactoryTable{
		"strings":  strings.New,
		"mathops":  mathops.New,
		"constant": constant.New,
		"script":   script.New,
	}
}
