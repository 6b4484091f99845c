package filter

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"

	"github.com/DrSkyle/cloudstamp/pkg/config"
	"github.com/DrSkyle/cloudstamp/pkg/engine/event"
)

// RuleSet holds compiled operator skip rules. A rule evaluating to true skips
// the event, ahead of the resource-type lookup.
type RuleSet struct {
	programs map[string]cel.Program
	logger   *slog.Logger
}

// CompileRules builds a RuleSet from skip-rule conditions, e.g.
// `operation == "Microsoft.Compute/virtualMachines/write" && principalType == "ServicePrincipal"`.
// Compilation errors are fatal: a rule that cannot compile would silently stop
// filtering whatever it was meant to catch.
func CompileRules(rules []config.SkipRule, logger *slog.Logger) (*RuleSet, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(rules) == 0 {
		return &RuleSet{logger: logger}, nil
	}

	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("subject", decls.String),
			decls.NewVar("resourceId", decls.String),
			decls.NewVar("operation", decls.String),
			decls.NewVar("principalType", decls.String),
			decls.NewVar("claims", decls.NewMapType(decls.String, decls.String)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	rs := &RuleSet{programs: make(map[string]cel.Program, len(rules)), logger: logger}
	for _, r := range rules {
		ast, issues := env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}
		rs.programs[r.ID] = prg
	}
	return rs, nil
}

// Match returns the ID of the first rule the event satisfies, or "" when none
// do. Evaluation errors are logged and the rule is treated as not matching, so
// a broken rule can only ever under-skip.
func (rs *RuleSet) Match(ev event.ChangeEvent) string {
	if rs == nil || len(rs.programs) == 0 {
		return ""
	}

	vars := map[string]interface{}{
		"subject":       ev.Subject,
		"resourceId":    ev.ResourceID,
		"operation":     ev.Operation,
		"principalType": string(ev.Principal),
		"claims":        ev.Claims.Map(),
	}

	for id, prg := range rs.programs {
		out, _, err := prg.Eval(vars)
		if err != nil {
			rs.logger.Error("Skip rule evaluation failed", "rule_id", id, "error", err)
			continue
		}
		if match, ok := out.Value().(bool); ok && match {
			return id
		}
	}
	return ""
}
