package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/chuo/apps/api/echo"
	"github.com/trezcool/chuo/core/user"
	testutil "github.com/trezcool/chuo/tests"
)

func Test_userApi_login(t *testing.T) {
	testutil.CreateUser(t, usrRepo, "Login Guy", "loginguy", "loginguy@test.cd", "s3cr3t", nil, true)
	testutil.CreateUser(t, usrRepo, "Sleeper", "sleeper", "sleeper@test.cd", "s3cr3t", nil, false)

	tests := []httpTest{
		{
			name: "empty payload", body: marshallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown user", body: marshallObj(t, LoginRequest{Username: "ghost", Password: "s3cr3t"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong password", body: marshallObj(t, LoginRequest{Username: "loginguy", Password: "nope"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "deactivated account", body: marshallObj(t, LoginRequest{Username: "sleeper", Password: "s3cr3t"}),
			wantCode: http.StatusForbidden,
		},
		{
			name: "login with username", body: marshallObj(t, LoginRequest{Username: "loginguy", Password: "s3cr3t"}),
			wantCode: http.StatusOK,
		},
		{
			name: "login with email", body: marshallObj(t, LoginRequest{Username: "loginguy@test.cd", Password: "s3cr3t"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if !assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String()) {
				return
			}
			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Reg Student", "regstudent", "regstudent@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Reg Admin", "regadmin", "regadmin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	newUser := func(uname, email string) []byte {
		return marshallObj(t, user.NewUser{
			Name:            "Reg Guy",
			Username:        uname,
			Email:           email,
			Password:        "G00d#Passw0rd",
			PasswordConfirm: "G00d#Passw0rd",
		})
	}

	tests := []httpTest{
		{name: "auth required", body: newUser("regguy1", "regguy1@test.cd"), wantCode: http.StatusUnauthorized},
		{name: "admin required", token: getToken(t, student), body: newUser("regguy1", "regguy1@test.cd"), wantCode: http.StatusForbidden},
		{name: "weak password rejected", token: adminToken, body: marshallObj(t, user.NewUser{
			Name: "Reg Guy", Username: "regguy1", Email: "regguy1@test.cd",
			Password: "12345678", PasswordConfirm: "12345678",
		}), wantCode: http.StatusBadRequest},
		{name: "register", token: adminToken, body: newUser("regguy1", "regguy1@test.cd"), wantCode: http.StatusCreated},
		{name: "register another", token: adminToken, body: newUser("regguy2", "regguy2@test.cd"), wantCode: http.StatusCreated},
	}
	var ids []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if !assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String()) {
				return
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.NewDecoder(rec.Body).Decode(&usr); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				assert.NotEmpty(t, usr.ID)
				ids = append(ids, usr.ID)
			}
		})
	}

	// distinct users with distinct IDs, both persisted
	if assert.Len(t, ids, 2) {
		assert.NotEqual(t, ids[0], ids[1])
		for _, id := range ids {
			if _, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: id}); err != nil {
				t.Errorf("GetUser(%s) failed: %v", id, err)
			}
		}
	}
}

func Test_userApi_query_authz(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Q Student", "qstudent", "qstudent@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Q Admin", "qadmin", "qadmin@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized},
		{name: "admin required", token: getToken(t, student), wantCode: http.StatusForbidden},
		{name: "admin allowed", token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}
