package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/store"
)

// loadContent loads and validates the content package.
// Schema failures abort; semantic problems are returned alongside a
// usable package so commands can decide how strict to be.
func loadContent(opts *RootOptions, f *OutputFormatter) (*content.Package, []content.ValidationError, error) {
	pkg, semantic, err := content.LoadDir(opts.Content)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("load content from %s", opts.Content), err)
	}
	f.VerboseLog("Loaded %d content record(s) from %s", pkg.Size(), opts.Content)
	return pkg, semantic, nil
}

// openStore opens the character database.
func openStore(opts *RootOptions) (*store.Store, error) {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("open database %s", opts.DBPath), err)
	}
	return st, nil
}

// loadCharacter fetches a character, mapping absence to a command error.
func loadCharacter(ctx context.Context, st *store.Store, id string) (*entity.Character, error) {
	ch, err := st.GetCharacter(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("character %q not found", id))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load character", err)
	}
	return ch, nil
}
