package service

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/repo"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrNotFound           = errors.New("not found")           // 404
	ErrConflict           = errors.New("conflict")            // 400, duplicate email
	ErrInvalidCredentials = errors.New("invalid credentials") // 400
	ErrUnsupportedMedia   = errors.New("unsupported media")   // 400
)

// fromRepo lifts store sentinels into the service taxonomy and leaves
// anything else untouched, which handlers report as 500.
func fromRepo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrInvalidID):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
