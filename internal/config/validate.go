package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func loadSchema() {
	schemaCtx = cuecontext.New()
	src, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		schemaErr = fmt.Errorf("loading embedded schema: %w", err)
		return
	}
	schema := schemaCtx.CompileBytes(src)
	if schema.Err() != nil {
		schemaErr = fmt.Errorf("compiling schema: %w", schema.Err())
		return
	}
	schemaDef = schema.LookupPath(cue.ParsePath("#Options"))
	if schemaDef.Err() != nil {
		schemaErr = fmt.Errorf("looking up #Options definition: %w", schemaDef.Err())
	}
}

// Validate checks defaulted options against the embedded CUE schema and
// reports every violation in one error.
func Validate(opts *Options) error {
	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return schemaErr
	}

	data, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshaling options: %w", err)
	}

	// cue.Context is not safe for concurrent use.
	schemaMu.Lock()
	defer schemaMu.Unlock()

	value := schemaCtx.CompileBytes(data)
	if value.Err() != nil {
		return fmt.Errorf("compiling options as CUE: %w", value.Err())
	}
	unified := schemaDef.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range errors.Errors(err) {
			msgs = append(msgs, strings.Join(e.Path(), ".")+": "+e.Error())
		}
		return fmt.Errorf("invalid options: %s", strings.Join(msgs, "; "))
	}
	return nil
}

var schemaMu sync.Mutex
