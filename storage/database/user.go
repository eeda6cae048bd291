package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chuo/core/user"
)

// unique constraints, as named in the migrations
const (
	userEmailKey            = "user_email_key"
	userUsernameKey         = "user_username_key"
	studentProfileRollKey   = "student_profile_roll_number_key"
	staffProfileEmployeeKey = "staff_profile_employee_number_key"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) fromRows(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.fromRow(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) trapUniqueErr(err error, sp *user.StudentProfile, stp *user.StaffProfile) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case userEmailKey:
		return user.ErrEmailExists
	case userUsernameKey:
		return user.ErrUsernameExists
	case studentProfileRollKey:
		var val string
		if sp != nil {
			val = sp.RollNumber
		}
		return &user.DuplicateKeyError{Field: "rollNumber", Value: val}
	case staffProfileEmployeeKey:
		var val string
		if stp != nil {
			val = stp.EmployeeNumber
		}
		return &user.DuplicateKeyError{Field: "employeeNumber", Value: val}
	}
	return err
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded = append(excluded, u.ID)
	}

	if username != "" {
		var exists bool
		err := repo.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM "user" WHERE username = $1 AND NOT (id = ANY($2)))`,
			username, pq.Array(excluded))
		if err != nil {
			return errors.Wrap(err, "checking username uniqueness")
		}
		if exists {
			return user.ErrUsernameExists
		}
	}
	if email != "" {
		var exists bool
		err := repo.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND NOT (id = ANY($2)))`,
			email, pq.Array(excluded))
		if err != nil {
			return errors.Wrap(err, "checking email uniqueness")
		}
		if exists {
			return user.ErrEmailExists
		}
	}
	return nil
}

const insertUserSQL = `
INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertUserSQL, repo.toRow(usr)); err != nil {
		return user.User{}, repo.trapUniqueErr(errors.Wrap(err, "inserting user"), nil, nil)
	}
	return usr, nil
}

func (repo userRepository) CreateUserWithProfile(ctx context.Context, usr user.User, sp *user.StudentProfile, stp *user.StaffProfile) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.NamedExecContext(ctx, insertUserSQL, repo.toRow(usr)); err != nil {
		return user.User{}, repo.trapUniqueErr(errors.Wrap(err, "inserting user"), sp, stp)
	}

	if sp != nil {
		sp.UserID = usr.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO student_profile (user_id, roll_number, program_id, section_id, guardian_email, guardian_phone, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sp.UserID, sp.RollNumber, sp.ProgramID, sp.SectionID, sp.GuardianEmail, sp.GuardianPhone, sp.CreatedAt.UTC())
		if err != nil {
			return user.User{}, repo.trapUniqueErr(errors.Wrap(err, "inserting student profile"), sp, stp)
		}
	}
	if stp != nil {
		stp.UserID = usr.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO staff_profile (user_id, employee_number, department_id, created_at)
			 VALUES ($1, $2, $3, $4)`,
			stp.UserID, stp.EmployeeNumber, stp.DepartmentID, stp.CreatedAt.UTC())
		if err != nil {
			return user.User{}, repo.trapUniqueErr(errors.Wrap(err, "inserting staff profile"), sp, stp)
		}
	}

	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing transaction")
	}
	return usr, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	rows, err := repo.db.NamedQueryContext(ctx, insertUserSQL+`
ON CONFLICT (email) DO UPDATE SET
	name = EXCLUDED.name,
	roles = EXCLUDED.roles,
	updated_at = EXCLUDED.updated_at
RETURNING *`, repo.toRow(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return user.User{}, errors.Wrap(rows.Err(), "upserting user")
	}
	if err = rows.StructScan(&row); err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ID != "" {
		conds = append(conds, "u.id = "+arg(filter.ID))
	}
	if filter.Email != "" {
		conds = append(conds, "u.email = "+arg(filter.Email))
	}
	if len(filter.UsernameOrEmail) > 0 {
		p := arg(pq.Array(filter.UsernameOrEmail))
		conds = append(conds, "(u.username = ANY("+p+") OR u.email = ANY("+p+"))")
	}
	if filter.RollNumber != "" {
		conds = append(conds, "u.id IN (SELECT user_id FROM student_profile WHERE roll_number = "+arg(filter.RollNumber)+")")
	}
	if filter.EmployeeNumber != "" {
		conds = append(conds, "u.id IN (SELECT user_id FROM staff_profile WHERE employee_number = "+arg(filter.EmployeeNumber)+")")
	}
	if len(conds) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	q := `SELECT u.* FROM "user" u WHERE ` + strings.Join(conds, " AND ") + ` LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return repo.fromRow(row), nil
}

type studentProfileRow struct {
	UserID        string    `db:"user_id"`
	RollNumber    string    `db:"roll_number"`
	ProgramID     string    `db:"program_id"`
	SectionID     string    `db:"section_id"`
	GuardianEmail string    `db:"guardian_email"`
	GuardianPhone string    `db:"guardian_phone"`
	CreatedAt     time.Time `db:"created_at"`
}

type staffProfileRow struct {
	UserID         string    `db:"user_id"`
	EmployeeNumber string    `db:"employee_number"`
	DepartmentID   string    `db:"department_id"`
	CreatedAt      time.Time `db:"created_at"`
}

func (repo userRepository) GetStudentProfile(ctx context.Context, userID string) (user.StudentProfile, error) {
	var row studentProfileRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM student_profile WHERE user_id = $1`, userID)
	if err != nil {
		return user.StudentProfile{}, repo.trapNoRowsErr(err, "getting student profile")
	}
	return user.StudentProfile{
		UserID:        row.UserID,
		RollNumber:    row.RollNumber,
		ProgramID:     row.ProgramID,
		SectionID:     row.SectionID,
		GuardianEmail: row.GuardianEmail,
		GuardianPhone: row.GuardianPhone,
		CreatedAt:     row.CreatedAt,
	}, nil
}

func (repo userRepository) GetStaffProfile(ctx context.Context, userID string) (user.StaffProfile, error) {
	var row staffProfileRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM staff_profile WHERE user_id = $1`, userID)
	if err != nil {
		return user.StaffProfile{}, repo.trapNoRowsErr(err, "getting staff profile")
	}
	return user.StaffProfile{
		UserID:         row.UserID,
		EmployeeNumber: row.EmployeeNumber,
		DepartmentID:   row.DepartmentID,
		CreatedAt:      row.CreatedAt,
	}, nil
}

func (repo userRepository) StudentRosterBySection(ctx context.Context, sectionID string) (map[string]string, error) {
	var rows []struct {
		RollNumber string `db:"roll_number"`
		UserID     string `db:"user_id"`
	}
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT roll_number, user_id FROM student_profile WHERE section_id = $1`, sectionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying section roster")
	}

	roster := make(map[string]string, len(rows))
	for _, r := range rows {
		roster[r.RollNumber] = r.UserID
	}
	return roster, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.fromRows(rows), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	conds := []string{"TRUE"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(name ILIKE "+p+" OR username ILIKE "+p+" OR email ILIKE "+p+")")
	}
	if len(filter.Roles) > 0 {
		conds = append(conds, "roles && "+arg(pq.Array(filter.Roles)))
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	var rows []userRow
	q := `SELECT * FROM "user" WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.fromRows(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	sets := []string{"updated_at = " + "$1"}
	args := []interface{}{time.Now().UTC()}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if usr.Name != "" {
		sets = append(sets, "name = "+arg(usr.Name))
	}
	if usr.Username != "" {
		sets = append(sets, "username = "+arg(usr.Username))
	}
	if usr.Email != "" {
		sets = append(sets, "email = "+arg(usr.Email))
	}
	if usr.Roles != nil {
		sets = append(sets, "roles = "+arg(pq.Array(usr.Roles)))
	}
	if len(usr.PasswordHash) > 0 {
		sets = append(sets, "password_hash = "+arg(usr.PasswordHash))
	}
	if isActive != nil {
		sets = append(sets, "is_active = "+arg(*isActive))
	}

	var row userRow
	q := `UPDATE "user" SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + arg(usr.ID) + ` RETURNING *`
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if uErr := repo.trapUniqueErr(err, nil, nil); uErr == user.ErrEmailExists || uErr == user.ErrUsernameExists {
			return user.User{}, uErr
		}
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE "user" SET last_login = $1 WHERE id = $2 RETURNING *`, time.Now().UTC(), usr.ID)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "setting last login")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
