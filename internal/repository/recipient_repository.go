package repository

import (
	"database/sql"

	appErrors "github.com/unclebandit/campaign-manager-backend/internal/errors"
	"github.com/unclebandit/campaign-manager-backend/internal/model"
)

// RecipientRepositoryInterface is the recipient store contract consumed by
// the linking job and the recipient service.
type RecipientRepositoryInterface interface {
	FindByEmail(email string) (*model.Recipient, error)
	// Upsert creates a recipient if absent and returns the row. It never
	// overwrites name, opt-out state or group on an existing recipient.
	Upsert(email string, name *string) (*model.Recipient, error)
	SetOptOut(email string, optOut bool, reason *string) (*model.Recipient, error)
	Update(id int, name *string, groupID *int, optOut *bool) (*model.Recipient, error)
	List(includeOptedOut bool) ([]model.Recipient, error)
	AssignGroup(recipientID, groupID int) error
}

type RecipientRepository struct {
	DB *sql.DB
}

const recipientColumns = `id, email, name, group_id, opt_out, opt_out_reason, created_at, updated_at`

func scanRecipient(row *sql.Row) (*model.Recipient, error) {
	var r model.Recipient
	err := row.Scan(&r.ID, &r.Email, &r.Name, &r.GroupID, &r.OptOut, &r.OptOutReason, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByEmail returns (nil, nil) when the email is unknown.
func (r *RecipientRepository) FindByEmail(email string) (*model.Recipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM recipients WHERE email=$1`
	rec, err := scanRecipient(r.DB.QueryRow(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, appErrors.NewTransientStore("find recipient", err)
	}
	return rec, nil
}

func (r *RecipientRepository) Upsert(email string, name *string) (*model.Recipient, error) {
	existing, err := r.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	// ON CONFLICT guards against a concurrent insert of the same email.
	query := `
        INSERT INTO recipients (email, name, opt_out, created_at)
        VALUES ($1, $2, false, NOW())
        ON CONFLICT (email) DO NOTHING
        RETURNING ` + recipientColumns
	rec, err := scanRecipient(r.DB.QueryRow(query, email, name))
	if err != nil {
		if err == sql.ErrNoRows {
			// Lost the race; the row exists now.
			return r.FindByEmail(email)
		}
		return nil, appErrors.NewTransientStore("upsert recipient", err)
	}
	return rec, nil
}

func (r *RecipientRepository) SetOptOut(email string, optOut bool, reason *string) (*model.Recipient, error) {
	query := `
        UPDATE recipients
        SET opt_out=$1, opt_out_reason=$2, updated_at=NOW()
        WHERE email=$3
        RETURNING ` + recipientColumns
	rec, err := scanRecipient(r.DB.QueryRow(query, optOut, reason, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewRecipientNotFound(email)
		}
		return nil, appErrors.NewTransientStore("set opt-out", err)
	}
	return rec, nil
}

func (r *RecipientRepository) Update(id int, name *string, groupID *int, optOut *bool) (*model.Recipient, error) {
	query := `
        UPDATE recipients
        SET name=COALESCE($1, name),
            group_id=COALESCE($2, group_id),
            opt_out=COALESCE($3, opt_out),
            updated_at=NOW()
        WHERE id=$4
        RETURNING ` + recipientColumns
	rec, err := scanRecipient(r.DB.QueryRow(query, name, groupID, optOut, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &appErrors.ErrNotFound{Resource: "recipient", Key: id}
		}
		return nil, appErrors.NewTransientStore("update recipient", err)
	}
	return rec, nil
}

func (r *RecipientRepository) List(includeOptedOut bool) ([]model.Recipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM recipients`
	if !includeOptedOut {
		query += ` WHERE opt_out=false`
	}
	query += ` ORDER BY id`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, appErrors.NewTransientStore("list recipients", err)
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.GroupID, &rec.OptOut, &rec.OptOutReason, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, appErrors.NewTransientStore("list recipients", err)
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (r *RecipientRepository) AssignGroup(recipientID, groupID int) error {
	query := `UPDATE recipients SET group_id=$1, updated_at=NOW() WHERE id=$2`
	res, err := r.DB.Exec(query, groupID, recipientID)
	if err != nil {
		return appErrors.NewTransientStore("assign group", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &appErrors.ErrNotFound{Resource: "recipient", Key: recipientID}
	}
	return nil
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
