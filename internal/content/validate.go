package content

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
)

//go:embed schema.cue
var schemaCUE string

// Validation error codes (E200-E299)
const (
	ErrSchema          = "E200" // CUE schema violation
	ErrDuplicateID     = "E201" // duplicate record id
	ErrUnknownOpKind   = "E202" // operation kind not recognized
	ErrMalformedOp     = "E203" // operation payload did not decode
	ErrDuplicateOption = "E204" // duplicate select option key
	ErrDanglingAbility = "E205" // giveAbilityBlock target missing
)

// ValidationError represents one content validation problem.
type ValidationError struct {
	File    string `json:"file,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.File, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// schemaValidator holds the compiled CUE schema. Compiling the schema is
// not free, so one validator is shared across all documents of a load.
type schemaValidator struct {
	record cue.Value
}

func newSchemaValidator() (*schemaValidator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile content schema: %w", err)
	}
	record := schema.LookupPath(cue.ParsePath("#Record"))
	if err := record.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Record: %w", err)
	}
	return &schemaValidator{record: record}, nil
}

// validateDocument unifies one decoded YAML document with #Record and
// collects every schema violation.
func (v *schemaValidator) validateDocument(file string, doc any) []ValidationError {
	val := v.record.Context().Encode(doc)
	if err := val.Err(); err != nil {
		return []ValidationError{{
			File: file, Field: "document",
			Message: err.Error(), Code: ErrSchema,
		}}
	}

	unified := v.record.Unify(val)
	err := unified.Validate(cue.Concrete(false))
	if err == nil {
		return nil
	}

	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		field := ""
		if path := e.Path(); len(path) > 0 {
			for i, p := range path {
				if i > 0 {
					field += "."
				}
				field += p
			}
		}
		out = append(out, ValidationError{
			File: file, Field: field,
			Message: e.Error(), Code: ErrSchema,
		})
	}
	return out
}

// ValidateRecords runs the semantic checks the CUE schema cannot express:
// id uniqueness, operation payload decodability, select option key
// uniqueness, ability grant targets. All errors are collected.
func ValidateRecords(records []*Record) []ValidationError {
	var errs []ValidationError

	ids := make(map[string]bool, len(records))
	abilityIDs := make(map[string]bool)
	for _, r := range records {
		if ids[r.ID] {
			errs = append(errs, ValidationError{
				Field:   "id",
				Message: fmt.Sprintf("duplicate record id: %q", r.ID),
				Code:    ErrDuplicateID,
			})
		}
		ids[r.ID] = true
		if rules.SourceKind(r.Kind) == rules.SourceAbility {
			abilityIDs[r.ID] = true
		}
	}

	for _, r := range records {
		errs = append(errs, validateOperations(r.ID, r.Operations, ids)...)
	}
	return errs
}

// validateOperations checks a record's operation list, recursing into
// nested operations (select options, conditional branches).
func validateOperations(recordID string, ops []rules.Operation, ids map[string]bool) []ValidationError {
	var errs []ValidationError
	for i, op := range ops {
		field := fmt.Sprintf("%s.operations[%d]", recordID, i)

		if op.Data == nil {
			code := ErrMalformedOp
			msg := fmt.Sprintf("payload for kind %q did not decode", op.RawKind)
			if !knownOpKind(rules.OpKind(op.RawKind)) {
				code = ErrUnknownOpKind
				msg = fmt.Sprintf("unknown operation kind %q", op.RawKind)
			}
			errs = append(errs, ValidationError{Field: field, Message: msg, Code: code})
			continue
		}

		switch data := op.Data.(type) {
		case rules.Select:
			seen := make(map[string]bool, len(data.Options))
			for _, opt := range data.Options {
				if seen[opt.Key] {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("duplicate select option key: %q", opt.Key),
						Code:    ErrDuplicateOption,
					})
				}
				seen[opt.Key] = true
				errs = append(errs, validateOperations(recordID, opt.Operations, ids)...)
			}
		case rules.GiveAbility:
			if !ids[data.Ability] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("granted ability %q is not in the package", data.Ability),
					Code:    ErrDanglingAbility,
				})
			}
		case rules.Conditional:
			errs = append(errs, validateOperations(recordID, data.Then, ids)...)
			errs = append(errs, validateOperations(recordID, data.Else, ids)...)
		}
	}
	return errs
}

func knownOpKind(k rules.OpKind) bool {
	switch k {
	case rules.OpCreateValue, rules.OpAdjValue, rules.OpSetValue,
		rules.OpGiveAbilityBlock, rules.OpSelect, rules.OpConditional:
		return true
	}
	return false
}
