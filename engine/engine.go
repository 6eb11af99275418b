// Package engine implements the façade that ties the parser, storage, and
// auth packages together: open/register_user/login/validate/execute/close,
// per spec §4.4.
package engine

import (
	"os"

	"github.com/harrison/sqlengine/auth"
	"github.com/harrison/sqlengine/errkind"
	"github.com/harrison/sqlengine/logger"
	"github.com/harrison/sqlengine/sqlvalue"
	"github.com/harrison/sqlengine/storage"
)

// usersTable is the built-in table name the ownership layer uses for
// credentials, per spec §3.
const usersTable = "users"

// DB is the engine's façade. It borrows tables from its Catalog for the
// duration of a single statement; it does not itself own rows.
type DB struct {
	catalog     *storage.Catalog
	authEnabled bool
	authn       *auth.Authenticator
	log         *logger.FileLogger
}

// Open ensures dir exists, loads (or creates) the catalog inside it, and
// initializes the authenticator. When cfg.AuthEnabled, it also ensures a
// `users` table exists with the schema from spec §3.
func Open(cfg *Config) (*DB, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, errkind.Wrap(errkind.Schema, "ensure persistence directory", err)
	}

	catalog, err := storage.Open(cfg.Dir)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, errkind.Wrap(errkind.Schema, "initialize logger", err)
	}

	db := &DB{
		catalog:     catalog,
		authEnabled: cfg.AuthEnabled,
		authn:       auth.New(cfg.SessionTTL),
		log:         log,
	}

	if cfg.AuthEnabled && !catalog.HasTable(usersTable) {
		if _, err := catalog.CreateTable(usersTable, usersSchema()); err != nil {
			return nil, err
		}
	}

	log.Info("engine opened at %s (auth=%v)", cfg.Dir, cfg.AuthEnabled)
	return db, nil
}

func usersSchema() []storage.Column {
	return []storage.Column{
		{Name: "id", Dtype: sqlvalue.DtInt, Primary: true, Unique: true},
		{Name: "username", Dtype: sqlvalue.DtString, Unique: true},
		{Name: "password_hash", Dtype: sqlvalue.DtString},
		{Name: "email", Dtype: sqlvalue.DtString},
		{Name: "is_admin", Dtype: sqlvalue.DtInt},
	}
}

// RegisterUser inserts a new row into `users`, hashing the password and
// letting storage's UNIQUE constraint on username enforce uniqueness
// naturally. The next id is max(existing id)+1 starting at 1 — not safe
// across concurrent writers, acceptable under the single-writer contract
// (spec §9).
func (db *DB) RegisterUser(username, password, email string, isAdmin bool) (int64, error) {
	if !db.authEnabled {
		return 0, errkind.New(errkind.Auth, "register_user requires auth to be enabled")
	}

	users, err := db.catalog.Table(usersTable)
	if err != nil {
		return 0, err
	}

	nextID := int64(1)
	for _, row := range users.Rows {
		if id := row["id"]; !id.IsNull() && id.Int() >= nextID {
			nextID = id.Int() + 1
		}
	}

	adminFlag := int64(0)
	if isAdmin {
		adminFlag = 1
	}

	input := map[string]sqlvalue.Value{
		"id":            sqlvalue.NewInt(nextID),
		"username":      sqlvalue.NewString(username),
		"password_hash": sqlvalue.NewString(auth.HashPassword(password)),
		"email":         sqlvalue.NewString(email),
		"is_admin":      sqlvalue.NewInt(adminFlag),
	}
	if _, err := users.Insert(input); err != nil {
		return 0, err
	}
	if err := users.Persist(db.catalog.Dir); err != nil {
		return 0, err
	}

	db.log.Info("registered user %q (id=%d)", username, nextID)
	return nextID, nil
}

// Login validates credentials and returns a fresh session token.
func (db *DB) Login(username, password string) (string, error) {
	if !db.authEnabled {
		return "", errkind.New(errkind.Auth, "login requires auth to be enabled")
	}

	users, err := db.catalog.Table(usersTable)
	if err != nil {
		return "", err
	}

	hash := auth.HashPassword(password)
	for _, row := range users.Rows {
		if row["username"].Str() == username {
			if row["password_hash"].Str() != hash {
				return "", errkind.New(errkind.Auth, "invalid credentials")
			}
			token := db.authn.CreateSession(row["id"].Int(), username)
			db.log.Info("user %q logged in", username)
			return token, nil
		}
	}
	return "", errkind.New(errkind.Auth, "invalid credentials")
}

// Validate delegates to the authenticator and returns the session's
// identity.
func (db *DB) Validate(token string) (int64, string, error) {
	sess, err := db.authn.Validate(token)
	if err != nil {
		return 0, "", err
	}
	return sess.UserID, sess.Username, nil
}

// Logout destroys a session; a missing token is a no-op.
func (db *DB) Logout(token string) {
	db.authn.Logout(token)
}

// Close persists every table and releases the catalog's directory lock.
func (db *DB) Close() error {
	if err := db.catalog.PersistAll(); err != nil {
		return err
	}
	db.log.Info("engine closed")
	db.log.Close()
	return db.catalog.Close()
}

// isAdminUser reports whether userID is an admin per spec §4.4: a `users`
// row matches (id = userID) whose is_admin is non-null and coerces to a
// non-zero integer. Treats a missing users table (auth disabled) as
// non-admin.
func (db *DB) isAdminUser(userID int64) bool {
	if !db.authEnabled {
		return false
	}
	users, err := db.catalog.Table(usersTable)
	if err != nil {
		return false
	}
	for _, row := range users.Rows {
		if row["id"].Int() == userID {
			admin := row["is_admin"]
			return !admin.IsNull() && admin.Int() != 0
		}
	}
	return false
}
