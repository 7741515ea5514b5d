package extract

import (
	"casemeta/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var stepRegistrations = map[string]bool{
	"start_step": true,
	"startStep":  true,
}

// extractSteps returns the steps registered directly in an entry method body.
// A registration whose first argument is missing or not a string literal is
// an unsupported construct and aborts the extraction.
func (c *extractionContext) extractSteps(body *sitter.Node) ([]Step, error) {
	steps := []Step{}
	for _, stmt := range statements(body) {
		call := expressionCall(stmt)
		if call == nil {
			continue
		}
		if name, ok := c.calleeAttribute(call); !ok || !stepRegistrations[name] {
			continue
		}
		args := positionalArgs(call)
		if len(args) == 0 {
			return nil, errors.UnsupportedConstruct("step registration without a name", c.Line(stmt))
		}
		name, ok := c.stringLiteral(args[0])
		if !ok {
			return nil, errors.UnsupportedConstruct("step name that is not a string literal", c.Line(args[0]))
		}
		steps = append(steps, Step{
			Name:      name,
			Docstring: name,
			Line:      c.Line(stmt),
			EndLine:   c.endLine(stmt),
		})
	}
	return steps, nil
}
