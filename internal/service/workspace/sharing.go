package workspace

import (
	"context"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
)

// Permissions lists who the folder is shared with
func (w *workspace) Permissions(ctx context.Context, folderID string) ([]models.Permission, error) {
	_, session, err := w.requireFolder(folderID)
	if err != nil {
		return nil, err
	}
	return w.backend.ListPermissions(ctx, session, folderID)
}

// Share grants email the given permissions, replacing any grants it already had
func (w *workspace) Share(ctx context.Context, folderID, email string, grants []models.Grant) ([]models.Permission, error) {
	email = normalizeEmail(email)
	if err := validateShare(email, grants); err != nil {
		return nil, err
	}

	_, session, err := w.requireFolder(folderID)
	if err != nil {
		return nil, err
	}
	if email == normalizeEmail(session.Email) {
		return nil, domain.NewValidation("cannot share a folder with yourself")
	}

	current, err := w.backend.ListPermissions(ctx, session, folderID)
	if err != nil {
		return nil, err
	}

	next := make([]models.Permission, 0, len(current)+1)
	found := false
	for _, p := range current {
		if normalizeEmail(p.Email) == email {
			p = models.Permission{Email: p.Email, Grants: orderGrants(grants)}
			found = true
		}
		next = append(next, p)
	}
	if !found {
		next = append(next, models.Permission{Email: email, Grants: orderGrants(grants)})
	}

	if err := w.backend.SetPermissions(ctx, session, folderID, next); err != nil {
		return nil, err
	}
	w.logger.Info("folder shared", "folder_id", folderID, "email", email, "grants", grants)
	return next, nil
}

// Unshare removes every grant email holds on the folder
func (w *workspace) Unshare(ctx context.Context, folderID, email string) ([]models.Permission, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidation("email is required")
	}

	_, session, err := w.requireFolder(folderID)
	if err != nil {
		return nil, err
	}

	current, err := w.backend.ListPermissions(ctx, session, folderID)
	if err != nil {
		return nil, err
	}

	next := slices.DeleteFunc(slices.Clone(current), func(p models.Permission) bool {
		return normalizeEmail(p.Email) == email
	})
	if len(next) == len(current) {
		return nil, domain.NewNotFound("permission", email)
	}

	if err := w.backend.SetPermissions(ctx, session, folderID, next); err != nil {
		return nil, err
	}
	w.logger.Info("folder unshared", "folder_id", folderID, "email", email)
	return next, nil
}

func validateShare(email string, grants []models.Grant) error {
	err := validation.Errors{
		"email": validation.Validate(email, validation.Required, is.EmailFormat),
		"grants": validation.Validate(grants,
			validation.Required.Error("at least one grant is required"),
			validation.Each(validation.By(func(v any) error {
				if g, _ := v.(models.Grant); !g.Valid() {
					return fmt.Errorf("must be one of read, write, delete")
				}
				return nil
			})),
		),
	}.Filter()
	if err != nil {
		return domain.NewValidation("%s", err.Error())
	}
	return nil
}

// orderGrants removes duplicates and sorts grants in display order.
func orderGrants(grants []models.Grant) []models.Grant {
	out := make([]models.Grant, 0, len(models.AllGrants))
	for _, g := range models.AllGrants {
		if slices.Contains(grants, g) {
			out = append(out, g)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
