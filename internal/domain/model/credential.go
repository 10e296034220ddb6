package model

// Persisted keys of a credential snapshot. The login flow and every store
// adapter rely on these names.
const (
	KeyTokenType   = "token_type"
	KeyAccessToken = "access_token"
	KeyRole        = "role"
	KeyUserID      = "user_id"
	KeyDisplayName = "display_name"
)

// DefaultTokenType is assumed when no token type has been stored.
const DefaultTokenType = "bearer"

// CredentialSnapshot is the locally cached identity of one session. Missing
// fields are empty strings.
type CredentialSnapshot struct {
	TokenType   string
	Token       string
	Role        Role
	UserID      string
	DisplayName string
}

// Authenticated reports whether the snapshot carries a token, a role and a
// user id. A role or user id without a token is not a session.
func (s CredentialSnapshot) Authenticated() bool {
	return s.Token != "" && s.Role != "" && s.UserID != ""
}

// AuthorizationHeader returns the header value sent to the backend, e.g.
// "bearer abc". Returns "" when there is no token.
func (s CredentialSnapshot) AuthorizationHeader() string {
	if s.Token == "" {
		return ""
	}
	tokenType := s.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	return tokenType + " " + s.Token
}

// Name is the label shown in the layout user box: display name, then user id.
func (s CredentialSnapshot) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.UserID != "" {
		return s.UserID
	}
	return "Unknown"
}

// CredentialUpdate is a partial write. Nil fields are left untouched.
type CredentialUpdate struct {
	TokenType   *string
	Token       *string
	Role        *Role
	UserID      *string
	DisplayName *string
}

// Fields flattens the update into persisted key/value pairs, skipping nil fields.
func (u CredentialUpdate) Fields() map[string]string {
	fields := make(map[string]string, 5)
	if u.TokenType != nil {
		fields[KeyTokenType] = *u.TokenType
	}
	if u.Token != nil {
		fields[KeyAccessToken] = *u.Token
	}
	if u.Role != nil {
		fields[KeyRole] = string(*u.Role)
	}
	if u.UserID != nil {
		fields[KeyUserID] = *u.UserID
	}
	if u.DisplayName != nil {
		fields[KeyDisplayName] = *u.DisplayName
	}
	return fields
}

// SnapshotFromFields builds a snapshot from persisted key/value pairs.
// Unknown keys are ignored; a missing token type is reported as DefaultTokenType.
func SnapshotFromFields(fields map[string]string) CredentialSnapshot {
	s := CredentialSnapshot{
		TokenType:   fields[KeyTokenType],
		Token:       fields[KeyAccessToken],
		Role:        Role(fields[KeyRole]),
		UserID:      fields[KeyUserID],
		DisplayName: fields[KeyDisplayName],
	}
	if s.TokenType == "" {
		s.TokenType = DefaultTokenType
	}
	return s
}

// IdentityUpdate returns the partial write applied after a successful
// revalidation: role, user id and display name. The token is untouched.
func IdentityUpdate(id Identity) CredentialUpdate {
	role := id.Role
	userID := id.UserID
	displayName := id.DisplayName
	return CredentialUpdate{
		Role:        &role,
		UserID:      &userID,
		DisplayName: &displayName,
	}
}

// LoginUpdate returns the full write applied after a successful login.
func LoginUpdate(res LoginResult) CredentialUpdate {
	tokenType := res.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	token := res.AccessToken
	update := IdentityUpdate(res.Identity)
	update.TokenType = &tokenType
	update.Token = &token
	return update
}
