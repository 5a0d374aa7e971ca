package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys attached to solver spans.
const (
	AttrAlgorithm       = "assignment.algorithm"
	AttrIteration       = "assignment.iteration"
	AttrRelativeGap     = "assignment.relative_gap"
	AttrStepSize        = "assignment.step_size"
	AttrBeckmannValue   = "assignment.beckmann_value"
	AttrNetworkNodes    = "assignment.network_nodes"
	AttrNetworkLinks    = "assignment.network_links"
	AttrClasses         = "assignment.classes"
	AttrTerminationRule = "assignment.termination_rule"
)

// RunAttributes returns the attributes attached to the top-level Run span.
func RunAttributes(algorithm string, nodes, links, classes int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.Int(AttrNetworkNodes, nodes),
		attribute.Int(AttrNetworkLinks, links),
		attribute.Int(AttrClasses, classes),
	}
}

// IterationAttributes returns the attributes attached to a per-iteration
// child span.
func IterationAttributes(iteration int, rgap, alpha float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrIteration, iteration),
		attribute.Float64(AttrRelativeGap, rgap),
		attribute.Float64(AttrStepSize, alpha),
	}
}
