package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialSnapshot_Authenticated(t *testing.T) {
	tests := []struct {
		name string
		snap CredentialSnapshot
		want bool
	}{
		{name: "complete", snap: CredentialSnapshot{Token: "t1", Role: RoleTeacher, UserID: "u1"}, want: true},
		{name: "orphaned role and user", snap: CredentialSnapshot{Role: RoleTeacher, UserID: "u1"}, want: false},
		{name: "token without role", snap: CredentialSnapshot{Token: "t1", UserID: "u1"}, want: false},
		{name: "token without user", snap: CredentialSnapshot{Token: "t1", Role: RoleStudent}, want: false},
		{name: "empty", snap: CredentialSnapshot{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.Authenticated())
		})
	}
}

func TestCredentialSnapshot_AuthorizationHeader(t *testing.T) {
	assert.Equal(t, "bearer abc", CredentialSnapshot{Token: "abc"}.AuthorizationHeader())
	assert.Equal(t, "demo abc", CredentialSnapshot{TokenType: "demo", Token: "abc"}.AuthorizationHeader())
	assert.Equal(t, "", CredentialSnapshot{TokenType: "bearer"}.AuthorizationHeader())
}

func TestCredentialSnapshot_Name(t *testing.T) {
	assert.Equal(t, "Amy", CredentialSnapshot{UserID: "u1", DisplayName: "Amy"}.Name())
	assert.Equal(t, "u1", CredentialSnapshot{UserID: "u1"}.Name())
	assert.Equal(t, "Unknown", CredentialSnapshot{}.Name())
}

func TestCredentialUpdate_FieldsSkipsNil(t *testing.T) {
	name := "Amy"
	fields := CredentialUpdate{DisplayName: &name}.Fields()
	assert.Equal(t, map[string]string{KeyDisplayName: "Amy"}, fields)
}

func TestSnapshotFromFields_DefaultsTokenType(t *testing.T) {
	snap := SnapshotFromFields(map[string]string{KeyAccessToken: "t1", KeyRole: "student", KeyUserID: "S01"})
	assert.Equal(t, CredentialSnapshot{TokenType: DefaultTokenType, Token: "t1", Role: RoleStudent, UserID: "S01"}, snap)
}

func TestLoginUpdate_WritesEveryField(t *testing.T) {
	update := LoginUpdate(LoginResult{
		Identity:    Identity{Role: RoleMaster, UserID: "admin", DisplayName: "Pokemon Master"},
		AccessToken: "demo.master.admin",
	})

	assert.Equal(t, map[string]string{
		KeyTokenType:   DefaultTokenType,
		KeyAccessToken: "demo.master.admin",
		KeyRole:        "master",
		KeyUserID:      "admin",
		KeyDisplayName: "Pokemon Master",
	}, update.Fields())
}
