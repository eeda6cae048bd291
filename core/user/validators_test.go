package user

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chuo/core"
)

func Test_validatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Sh0rt!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Bad pw 123!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "12345678", wantTag: pwdNotAllNumTag},
		{name: "no complexity", pwd: "alllowercase1", wantTag: pwdComplexityTag},
		{name: "similar to email", pwd: "Alice@test.cd1", wantTag: pwdAttrSimTag},
		{name: "valid", pwd: "G00d#Passw0rd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{
				Name:            "Alice A",
				Username:        "aliceaa",
				Email:           "alice@test.cd",
				Password:        tt.pwd,
				PasswordConfirm: tt.pwd,
			}
			err := core.Validate.Struct(&nu)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("Validate.Struct() error = %v, want nil", err)
				}
				return
			}
			errs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("Validate.Struct() error = %v, want ValidationErrors", err)
			}
			for _, fe := range errs {
				if fe.Tag() == tt.wantTag {
					return
				}
			}
			t.Errorf("Validate.Struct() errors = %v, want tag %q", errs, tt.wantTag)
		})
	}
}
