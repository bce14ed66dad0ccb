package repository

import (
	"database/sql"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
	"github.com/unclebandit/campaign-manager-backend/internal/model"
)

type GroupRepositoryInterface interface {
	Create(g *model.Group) error
	GetByID(id int) (*model.Group, error)
	Update(id int, name, description *string) (*model.Group, error)
	List() ([]model.Group, error)
}

type GroupRepository struct {
	DB *sql.DB
}

func (r *GroupRepository) Create(g *model.Group) error {
	query := `
        INSERT INTO groups (name, description, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id, created_at
    `
	err := r.DB.QueryRow(query, g.Name, g.Description).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return appErrors.NewTransientStore("create group", err)
	}
	return nil
}

func (r *GroupRepository) GetByID(id int) (*model.Group, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM groups WHERE id=$1`
	var g model.Group
	err := r.DB.QueryRow(query, id).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewGroupNotFound(id)
		}
		return nil, appErrors.NewTransientStore("get group", err)
	}
	return &g, nil
}

func (r *GroupRepository) Update(id int, name, description *string) (*model.Group, error) {
	query := `
        UPDATE groups
        SET name=COALESCE($1, name),
            description=COALESCE($2, description),
            updated_at=NOW()
        WHERE id=$3
        RETURNING id, name, description, created_at, updated_at
    `
	var g model.Group
	err := r.DB.QueryRow(query, name, description, id).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewGroupNotFound(id)
		}
		return nil, appErrors.NewTransientStore("update group", err)
	}
	return &g, nil
}

func (r *GroupRepository) List() ([]model.Group, error) {
	rows, err := r.DB.Query(`SELECT id, name, description, created_at, updated_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, appErrors.NewTransientStore("list groups", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, appErrors.NewTransientStore("list groups", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

var _ GroupRepositoryInterface = (*GroupRepository)(nil)
