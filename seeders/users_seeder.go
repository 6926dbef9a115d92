package seeders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"equiptrack/pkg/constants"
)

type seedUser struct {
	ID   string
	Name string
	Role string
	Base string
}

// One user per role and base, matching the login screen's picker.
var mockUsers = []seedUser{
	{ID: "USR-admin", Name: "System Admin", Role: constants.RoleAdmin, Base: "Lemal"},
	{ID: "USR-staff-lemal", Name: "Aung Kyaw", Role: constants.RoleStaff, Base: "Lemal"},
	{ID: "USR-keeper-lemal", Name: "Min Thu", Role: constants.RoleStorekeeper, Base: "Lemal"},
	{ID: "USR-manager-lemal", Name: "Daw Khin", Role: constants.RoleBaseManager, Base: "Lemal"},
	{ID: "USR-staff-base2", Name: "Zaw Lin", Role: constants.RoleStaff, Base: "Base 2"},
	{ID: "USR-keeper-base2", Name: "Hla Myo", Role: constants.RoleStorekeeper, Base: "Base 2"},
	{ID: "USR-manager-base2", Name: "U Tin", Role: constants.RoleBaseManager, Base: "Base 2"},
}

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	// Login never checks the password, but the column is NOT NULL and
	// real hashes keep the data shaped like production.
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, u := range mockUsers {
		_, err := db.Exec(ctx, `
			INSERT INTO users (id, name, email, role, base, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			u.ID, u.Name, u.ID+"@equiptrack.local", u.Role, u.Base, string(hash))
		if err != nil {
			return err
		}
	}
	return nil
}
