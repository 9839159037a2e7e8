package rest

import (
	"context"
	"fmt"

	"imgtree/internal/domain/models"
)

type permissionDTO struct {
	Email       string         `json:"email"`
	Permissions []models.Grant `json:"permissions"`
}

// ListPermissions returns who can access a folder and how
func (c *Client) ListPermissions(ctx context.Context, s models.Session, folderID string) ([]models.Permission, error) {
	resp, err := c.request(ctx, &s).
		SetPathParam("fid", folderID).
		Get("/user/{uid}/folder/{fid}/permissions")
	if err := checkResponse("list permissions", resp, err); err != nil {
		return nil, err
	}

	dtos, err := decodeList[permissionDTO](resp.Body(), "permissions")
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	perms := make([]models.Permission, 0, len(dtos))
	for _, d := range dtos {
		grants := make([]models.Grant, 0, len(d.Permissions))
		for _, g := range d.Permissions {
			if g.Valid() {
				grants = append(grants, g)
			}
		}
		perms = append(perms, models.Permission{Email: d.Email, Grants: grants})
	}
	return perms, nil
}

// SetPermissions replaces the folder's sharing with one email list per grant
func (c *Client) SetPermissions(ctx context.Context, s models.Session, folderID string, perms []models.Permission) error {
	resp, err := c.request(ctx, &s).
		SetPathParam("fid", folderID).
		SetBody(models.ToLists(perms)).
		Post("/user/{uid}/folder/{fid}/change_permission/")
	return checkResponse("set permissions", resp, err)
}
