package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/chuo/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = struct{}{}
	}

	for _, usr := range repo.db.users {
		if _, ok := excluded[usr.ID]; ok {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.checkDuplicates(usr, nil, nil); err != nil {
		return user.User{}, err
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo userRepository) CreateUserWithProfile(ctx context.Context, usr user.User, sp *user.StudentProfile, stp *user.StaffProfile) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.checkDuplicates(usr, sp, stp); err != nil {
		return user.User{}, err
	}
	// injected fault: the whole unit must fail, no partial write
	if repo.db.FailProfileCreate != nil && (sp != nil || stp != nil) {
		return user.User{}, repo.db.FailProfileCreate
	}

	repo.db.users[usr.ID] = &usr
	if sp != nil {
		p := *sp
		p.UserID = usr.ID
		repo.db.studentProfiles[usr.ID] = &p
	}
	if stp != nil {
		p := *stp
		p.UserID = usr.ID
		repo.db.staffProfiles[usr.ID] = &p
	}
	return usr, nil
}

// checkDuplicates mirrors the unique constraints enforced by postgres.
// Callers must hold the write lock.
func (repo userRepository) checkDuplicates(usr user.User, sp *user.StudentProfile, stp *user.StaffProfile) error {
	for _, u := range repo.db.users {
		if u.ID == usr.ID {
			continue
		}
		if usr.Email != "" && u.Email == usr.Email {
			return user.ErrEmailExists
		}
		if usr.Username != "" && u.Username == usr.Username {
			return user.ErrUsernameExists
		}
	}
	if sp != nil {
		for _, p := range repo.db.studentProfiles {
			if p.RollNumber == sp.RollNumber {
				return &user.DuplicateKeyError{Field: "rollNumber", Value: sp.RollNumber}
			}
		}
	}
	if stp != nil {
		for _, p := range repo.db.staffProfiles {
			if p.EmployeeNumber == stp.EmployeeNumber {
				return &user.DuplicateKeyError{Field: "employeeNumber", Value: stp.EmployeeNumber}
			}
		}
	}
	return nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, u := range repo.db.users {
		if u.Email == usr.Email {
			u.Name = usr.Name
			u.Roles = usr.Roles
			u.UpdatedAt = usr.UpdatedAt
			return *u, nil
		}
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if repo.matches(*usr, filter) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo userRepository) matches(usr user.User, filter user.GetFilter) bool {
	if filter.ID == "" && filter.Email == "" && len(filter.UsernameOrEmail) == 0 &&
		filter.RollNumber == "" && filter.EmployeeNumber == "" {
		return false
	}
	if filter.ID != "" && usr.ID != filter.ID {
		return false
	}
	if filter.Email != "" && usr.Email != filter.Email {
		return false
	}
	if len(filter.UsernameOrEmail) > 0 {
		var found bool
		for _, v := range filter.UsernameOrEmail {
			if usr.Username == v || usr.Email == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.RollNumber != "" {
		sp, ok := repo.db.studentProfiles[usr.ID]
		if !ok || sp.RollNumber != filter.RollNumber {
			return false
		}
	}
	if filter.EmployeeNumber != "" {
		stp, ok := repo.db.staffProfiles[usr.ID]
		if !ok || stp.EmployeeNumber != filter.EmployeeNumber {
			return false
		}
	}
	return true
}

func (repo userRepository) GetStudentProfile(ctx context.Context, userID string) (user.StudentProfile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sp, ok := repo.db.studentProfiles[userID]; ok {
		return *sp, nil
	}
	return user.StudentProfile{}, user.ErrNotFound
}

func (repo userRepository) GetStaffProfile(ctx context.Context, userID string) (user.StaffProfile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if stp, ok := repo.db.staffProfiles[userID]; ok {
		return *stp, nil
	}
	return user.StaffProfile{}, user.ErrNotFound
}

func (repo userRepository) StudentRosterBySection(ctx context.Context, sectionID string) (map[string]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	roster := make(map[string]string)
	for _, sp := range repo.db.studentProfiles {
		if sp.SectionID == sectionID {
			roster[sp.RollNumber] = sp.UserID
		}
	}
	return roster, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var users []user.User
	for _, usr := range repo.db.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(usr.Name), search) &&
			!strings.Contains(strings.ToLower(usr.Username), search) &&
			!strings.Contains(strings.ToLower(usr.Email), search) {
			continue
		}
		if len(filter.Roles) > 0 && !hasAnyRole(usr.Roles, filter.Roles) {
			continue
		}
		if filter.IsActive != nil && usr.Active() != *filter.IsActive {
			continue
		}
		if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func hasAnyRole(roles, wanted []string) bool {
	for _, r := range roles {
		for _, w := range wanted {
			if r == w {
				return true
			}
		}
	}
	return false
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	u, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if usr.Name != "" {
		u.Name = usr.Name
	}
	if usr.Username != "" {
		u.Username = usr.Username
	}
	if usr.Email != "" {
		u.Email = usr.Email
	}
	if usr.Roles != nil {
		u.Roles = usr.Roles
	}
	if len(usr.PasswordHash) > 0 {
		u.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		u.SetActive(*isActive)
	}
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	u, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	u.LastLogin = time.Now().UTC()
	return *u, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
		delete(repo.db.studentProfiles, id)
		delete(repo.db.staffProfiles, id)
	}
	return nil
}
