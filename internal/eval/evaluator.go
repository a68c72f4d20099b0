package eval

import (
	"fmt"
	"log/slog"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/resolve"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// DefaultMaxGrantDepth bounds ability-grant indirection within one pass.
// Legitimate content grants features at most a couple of levels deep;
// anything deeper is runaway homebrew.
const DefaultMaxGrantDepth = 4

// seedSource is the provenance label for base variables the evaluator
// itself creates before any operation runs.
const seedSource = "Base"

// Evaluator interprets ordered operation lists against the variable
// store. One Evaluator serves any number of StoreIDs; per-StoreID
// exclusivity is the Scheduler's job.
type Evaluator struct {
	vars     *varstore.Store
	order    []rules.SourceKind
	maxDepth int
	tokens   TokenGenerator
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithPrecedence overrides the default source precedence order.
// The slice is used as-is; callers must not mutate it afterwards.
func WithPrecedence(order []rules.SourceKind) Option {
	return func(e *Evaluator) { e.order = order }
}

// WithMaxGrantDepth overrides the ability-grant indirection limit.
func WithMaxGrantDepth(depth int) Option {
	return func(e *Evaluator) { e.maxDepth = depth }
}

// WithTokenGenerator overrides the pass token generator.
// Tests use NewFixedGenerator for deterministic output.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Evaluator) { e.tokens = g }
}

// New creates an Evaluator writing into vars.
func New(vars *varstore.Store, opts ...Option) *Evaluator {
	e := &Evaluator{
		vars:     vars,
		order:    rules.DefaultPrecedence,
		maxDepth: DefaultMaxGrantDepth,
		tokens:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vars returns the variable store the evaluator writes into.
func (e *Evaluator) Vars() *varstore.Store { return e.vars }

// Pass runs one full evaluation pass for a target.
//
// The target's variable state is reset and rebuilt; the returned Result
// holds the per-operation outcomes. The pass always completes and always
// yields some variable state, even for badly broken content - individual
// operations are skipped, never the pass.
func (e *Evaluator) Pass(id varstore.StoreID, ch *entity.Character, pkg *content.Package) *Result {
	e.vars.Reset(id)

	p := &pass{
		eval:   e,
		id:     id,
		ch:     ch,
		pkg:    pkg,
		clock:  NewClock(),
		grants: newGrantTracker(e.maxDepth),
	}
	p.seedBase()

	result := &Result{PassToken: e.tokens.Generate()}
	for _, src := range resolve.Sources(ch, pkg, e.order) {
		sr := SourceResult{Kind: src.Kind, SourceID: src.ID, Label: src.Label}
		p.src = src
		p.out = &sr
		p.applyList(src.Operations, src.Label, "", 0)
		result.Sources = append(result.Sources, sr)
	}

	slog.Debug("pass complete",
		"store_id", id,
		"pass_token", result.PassToken,
		"sources", len(result.Sources),
		"pending", len(result.Pending()),
		"skipped", len(result.Skipped()),
	)
	return result
}

// pass carries the state of one evaluation pass.
// Single-threaded by design - never shared across goroutines.
type pass struct {
	eval   *Evaluator
	id     varstore.StoreID
	ch     *entity.Character
	pkg    *content.Package
	clock  *Clock
	grants *grantTracker

	src *rules.OperationSource // source currently being walked
	out *SourceResult          // outcome sink for the current source
}

// seedBase creates the variables the engine itself reads, before any
// content operation runs. Creation fixes the variant; only non-default
// seed values produce history.
func (p *pass) seedBase() {
	var classHP, ancestryHP, speed int64
	if rec, ok := p.pkg.Lookup(p.ch.ClassID); ok {
		classHP = int64(rec.HP)
	}
	if rec, ok := p.pkg.Lookup(p.ch.AncestryID); ok {
		ancestryHP = int64(rec.HP)
		speed = int64(rec.Speed)
	}

	// Fixed seeding order: history timestamps come from the pass clock,
	// so the order here must not vary between passes.
	seedNumbers := []struct {
		name string
		n    int64
	}{
		{rules.VarLevel, int64(p.ch.Level)},
		{rules.VarClassHP, classHP},
		{rules.VarAncestryHP, ancestryHP},
		{rules.VarMaxHealthBonus, 0},
		{rules.VarACBonus, 0},
		{rules.VarSpeed, speed},
		{rules.VarBulkLimitBonus, 0},
	}
	for _, s := range seedNumbers {
		p.seed(s.name, rules.Number(s.n))
	}

	for _, name := range []string{
		rules.AttrStrength, rules.AttrDexterity, rules.AttrConstitution,
		rules.AttrIntelligence, rules.AttrWisdom, rules.AttrCharisma,
	} {
		p.seed(name, rules.Attribute{})
	}

	p.seed(rules.VarWithoutLevel, rules.Boolean(false))

	for _, name := range []string{
		rules.VarLanguages, rules.VarImmunities, rules.VarResistances,
		rules.VarWeaknesses, rules.VarExtraItems,
	} {
		p.seed(name, rules.List(nil))
	}
}

func (p *pass) seed(name string, v rules.Value) {
	if _, err := p.eval.vars.CreateIfAbsent(p.id, name, v.Variant()); err != nil {
		slog.Warn("seed variable failed", "store_id", p.id, "variable", name, "error", err)
		return
	}
	def, _ := rules.DefaultValue(v.Variant())
	if rules.ValueEqual(v, def) {
		return
	}
	if _, changed, err := p.eval.vars.Set(p.id, name, v); err == nil && changed {
		p.eval.vars.RecordHistory(p.id, name, rules.HistoryEntry{
			Source:    seedSource,
			From:      def.String(),
			To:        v.String(),
			Timestamp: p.clock.Next(),
		})
	}
}

// applyList walks operations in authoring order. label is the provenance
// label bonuses and history are attributed to (the granting ability's
// name inside a granted block); namespace distinguishes selections
// introduced by different granted instances of the same authored block.
func (p *pass) applyList(ops []rules.Operation, label, namespace string, depth int) {
	for _, op := range ops {
		p.apply(op, label, namespace, depth)
	}
}

func (p *pass) apply(op rules.Operation, label, namespace string, depth int) {
	switch data := op.Data.(type) {
	case nil:
		p.skip(op, fmt.Sprintf("unknown or malformed operation kind %q", op.RawKind))

	case rules.CreateValue:
		p.applyCreate(op, data, label)

	case rules.AdjustValue:
		p.applyAdjust(op, data, label)

	case rules.SetValue:
		p.applySet(op, data, label)

	case rules.GiveAbility:
		p.applyGrant(op, data.Ability, namespace, depth)

	case rules.Select:
		p.applySelect(op, data, label, namespace, depth)

	case rules.Conditional:
		p.applyConditional(op, data, label, namespace, depth)
	}
}

func (p *pass) applyCreate(op rules.Operation, data rules.CreateValue, label string) {
	if _, err := p.eval.vars.CreateIfAbsent(p.id, data.Name, data.Of); err != nil {
		p.skip(op, err.Error())
		return
	}
	if data.Initial != nil {
		prev, changed, err := p.eval.vars.Set(p.id, data.Name, data.Initial)
		if err != nil {
			p.skip(op, err.Error())
			return
		}
		if changed {
			p.recordHistory(data.Name, label, prev, data.Initial)
		}
	}
	p.applied(op)
}

func (p *pass) applyAdjust(op rules.Operation, data rules.AdjustValue, label string) {
	v, ok := p.eval.vars.Get(p.id, data.Name)
	if !ok {
		// Implicit creation: the adjustment shape fixes the variant.
		variant := adjustVariant(data)
		if _, err := p.eval.vars.CreateIfAbsent(p.id, data.Name, variant); err != nil {
			p.skip(op, err.Error())
			return
		}
		v, _ = p.eval.vars.Get(p.id, data.Name)
	}

	// Bonus-modeled adjustments go to the ledger, never the base value.
	// Stacking resolution happens lazily in the breakdown compiler.
	if data.BonusType != "" || data.Conditional {
		variant := v.Value.Variant()
		if variant != rules.VariantNumber && variant != rules.VariantProficiency {
			p.skip(op, fmt.Sprintf("bonus on %s variable %q", variant, data.Name))
			return
		}
		bonusType := data.BonusType
		if bonusType == "" {
			bonusType = rules.BonusTypeUntyped
		}
		p.eval.vars.RecordBonus(p.id, data.Name, rules.Bonus{
			Amount:      data.Amount,
			Type:        bonusType,
			Source:      label,
			Conditional: data.Conditional,
			Text:        data.Text,
			Timestamp:   p.clock.Next(),
		})
		p.applied(op)
		return
	}

	next, err := adjustValue(v.Value, data)
	if err != nil {
		p.skip(op, err.Error())
		return
	}
	prev, changed, err := p.eval.vars.Set(p.id, data.Name, next)
	if err != nil {
		p.skip(op, err.Error())
		return
	}
	if changed {
		p.recordHistory(data.Name, label, prev, next)
	}
	p.applied(op)
}

func (p *pass) applySet(op rules.Operation, data rules.SetValue, label string) {
	prev, changed, err := p.eval.vars.Set(p.id, data.Name, data.To)
	if err != nil {
		p.skip(op, err.Error())
		return
	}
	if changed {
		p.recordHistory(data.Name, label, prev, data.To)
	}
	p.applied(op)
}

func (p *pass) applyGrant(op rules.Operation, abilityID, namespace string, depth int) {
	if p.grants.wouldCycle(abilityID) {
		p.skip(op, fmt.Sprintf("ability %q already granted this pass (cycle)", abilityID))
		return
	}
	if p.grants.tooDeep(depth + 1) {
		p.skip(op, fmt.Sprintf("grant depth limit (%d) exceeded at ability %q", p.eval.maxDepth, abilityID))
		return
	}
	rec, ok := p.pkg.Lookup(abilityID)
	if !ok {
		p.skip(op, fmt.Sprintf("granted ability %q not in content package", abilityID))
		return
	}

	p.grants.record(abilityID)
	p.applied(op)
	// Splice the granted block in at the grant point. Bonuses and history
	// written by the block are attributed to the block's own name, and
	// its selections are namespaced by the instance that introduced it.
	p.applyList(rec.Operations, rec.Name, abilityID, depth+1)
}

func (p *pass) applySelect(op rules.Operation, data rules.Select, label, namespace string, depth int) {
	path, err := rules.SelectionPath{
		SourceKind:  p.src.Kind,
		SourceID:    p.src.ID,
		OperationID: op.ID,
		Namespace:   namespace,
	}.Hash()
	if err != nil {
		p.skip(op, err.Error())
		return
	}

	chosen, ok := p.ch.Selection(path)
	if !ok {
		p.pending(op, path, data)
		return
	}

	if len(data.Options) > 0 {
		for _, opt := range data.Options {
			if opt.Key == chosen {
				p.record(OperationOutcome{
					OperationID:   op.ID,
					Kind:          op.Kind(),
					Outcome:       OutcomeApplied,
					SelectionPath: path,
				})
				p.applyList(opt.Operations, label, namespace, depth)
				return
			}
		}
		p.skipWithPath(op, path, fmt.Sprintf("stored selection %q matches no option", chosen))
		return
	}

	// Filtered options: the stored value names a content record that must
	// still satisfy the filter (content updates can strand a selection).
	for _, rec := range p.pkg.FilterCandidates(data.Filter) {
		if rec.ID != chosen {
			continue
		}
		if p.grants.wouldCycle(rec.ID) {
			p.skipWithPath(op, path, fmt.Sprintf("selected %q already granted this pass (cycle)", rec.ID))
			return
		}
		if p.grants.tooDeep(depth + 1) {
			p.skipWithPath(op, path, fmt.Sprintf("grant depth limit (%d) exceeded at %q", p.eval.maxDepth, rec.ID))
			return
		}
		p.grants.record(rec.ID)
		p.record(OperationOutcome{
			OperationID:   op.ID,
			Kind:          op.Kind(),
			Outcome:       OutcomeApplied,
			SelectionPath: path,
		})
		p.applyList(rec.Operations, rec.Name, rec.ID, depth+1)
		return
	}
	p.skipWithPath(op, path, fmt.Sprintf("stored selection %q no longer satisfies the filter", chosen))
}

func (p *pass) applyConditional(op rules.Operation, data rules.Conditional, label, namespace string, depth int) {
	branch := data.Else
	if p.holds(data.If) {
		branch = data.Then
	}
	p.applied(op)
	p.applyList(branch, label, namespace, depth)
}

// holds evaluates a condition against current variable state. A condition
// on an absent variable, or with a mismatched operand, is false - never
// an error.
func (p *pass) holds(cond rules.Condition) bool {
	v, ok := p.eval.vars.Get(p.id, cond.Variable)
	if !ok {
		return false
	}

	switch val := v.Value.(type) {
	case rules.Number:
		if cond.ToNumber == nil {
			return false
		}
		return compareInt(int64(val), cond.Compare, *cond.ToNumber)
	case rules.Attribute:
		if cond.ToNumber == nil {
			return false
		}
		return compareInt(val.Score, cond.Compare, *cond.ToNumber)
	case rules.Boolean:
		if cond.ToBool == nil {
			return false
		}
		switch cond.Compare {
		case rules.CompareEq:
			return bool(val) == *cond.ToBool
		case rules.CompareNeq:
			return bool(val) != *cond.ToBool
		}
		return false
	case rules.List:
		if cond.Compare == rules.CompareHas {
			return val.Contains(cond.ToString)
		}
		return false
	case rules.Proficiency:
		rank, ok := rules.ParseRank(cond.ToString)
		if !ok {
			return false
		}
		switch cond.Compare {
		case rules.CompareAtLeast:
			return val.Rank.AtLeast(rank)
		case rules.CompareEq:
			return val.Rank == rank
		case rules.CompareNeq:
			return val.Rank != rank
		}
		return false
	default:
		return false
	}
}

func compareInt(have int64, op rules.CompareOp, want int64) bool {
	switch op {
	case rules.CompareEq:
		return have == want
	case rules.CompareNeq:
		return have != want
	case rules.CompareGte:
		return have >= want
	case rules.CompareLte:
		return have <= want
	case rules.CompareGt:
		return have > want
	case rules.CompareLt:
		return have < want
	default:
		return false
	}
}

// adjustVariant infers the variant an implicit creation should use from
// the adjustment shape.
func adjustVariant(data rules.AdjustValue) rules.Variant {
	switch {
	case data.Rank != "":
		return rules.VariantProficiency
	case len(data.Append) > 0:
		return rules.VariantList
	case data.SetBool != nil:
		return rules.VariantBoolean
	default:
		return rules.VariantNumber
	}
}

// adjustValue applies a direct (non-bonus) adjustment to a value.
func adjustValue(v rules.Value, data rules.AdjustValue) (rules.Value, error) {
	switch val := v.(type) {
	case rules.Number:
		return val + rules.Number(data.Amount), nil

	case rules.Boolean:
		if data.SetBool == nil {
			return nil, fmt.Errorf("boolean adjustment needs set")
		}
		return rules.Boolean(*data.SetBool), nil

	case rules.List:
		if len(data.Append) == 0 {
			return nil, fmt.Errorf("list adjustment needs append")
		}
		out := val
		for _, s := range data.Append {
			if !out.Contains(s) {
				out = append(out[:len(out):len(out)], s)
			}
		}
		return out, nil

	case rules.Proficiency:
		if data.Rank == "" {
			return nil, fmt.Errorf("proficiency adjustment needs rank")
		}
		// Promote only - a Trained grant on an Expert skill is a no-op,
		// not a demotion.
		if data.Rank.AtLeast(val.Rank) && data.Rank != val.Rank {
			val.Rank = data.Rank
		}
		return val, nil

	case rules.Attribute:
		return boostAttribute(val, data.Amount), nil

	default:
		return nil, fmt.Errorf("unsupported variant %s", v.Variant())
	}
}

// boostAttribute applies n boosts (or flaws when negative). A boost above
// +4 is a half-boost: the first sets partial, the second completes it.
func boostAttribute(a rules.Attribute, n int64) rules.Attribute {
	for ; n > 0; n-- {
		if a.Score >= 4 {
			if a.Partial {
				a.Score++
				a.Partial = false
			} else {
				a.Partial = true
			}
		} else {
			a.Score++
		}
	}
	for ; n < 0; n++ {
		a.Score--
	}
	return a
}

func (p *pass) recordHistory(name, label string, prev, next rules.Value) {
	from := ""
	if prev != nil {
		from = prev.String()
	}
	p.eval.vars.RecordHistory(p.id, name, rules.HistoryEntry{
		Source:    label,
		From:      from,
		To:        next.String(),
		Timestamp: p.clock.Next(),
	})
}

func (p *pass) record(oc OperationOutcome) {
	p.out.Ops = append(p.out.Ops, oc)
}

func (p *pass) applied(op rules.Operation) {
	p.record(OperationOutcome{OperationID: op.ID, Kind: op.Kind(), Outcome: OutcomeApplied})
}

func (p *pass) skip(op rules.Operation, reason string) {
	p.skipWithPath(op, "", reason)
}

func (p *pass) skipWithPath(op rules.Operation, path, reason string) {
	slog.Warn("operation skipped",
		"store_id", p.id,
		"source", p.src.ID,
		"operation", op.ID,
		"kind", string(op.Kind()),
		"reason", reason,
	)
	p.record(OperationOutcome{
		OperationID:   op.ID,
		Kind:          op.Kind(),
		Outcome:       OutcomeSkipped,
		Reason:        reason,
		SelectionPath: path,
	})
}

// pending records a select with no stored choice, listing its options
// for the UI prompt.
func (p *pass) pending(op rules.Operation, path string, data rules.Select) {
	oc := OperationOutcome{
		OperationID:   op.ID,
		Kind:          op.Kind(),
		Outcome:       OutcomePendingSelection,
		Reason:        data.Prompt,
		SelectionPath: path,
	}
	if len(data.Options) > 0 {
		for _, opt := range data.Options {
			label := opt.Label
			if label == "" {
				label = opt.Key
			}
			oc.Options = append(oc.Options, PendingOption{Key: opt.Key, Label: label})
		}
	} else {
		for _, rec := range p.pkg.FilterCandidates(data.Filter) {
			oc.Options = append(oc.Options, PendingOption{Key: rec.ID, Label: rec.Name})
		}
	}
	p.record(oc)
}
