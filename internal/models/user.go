package models

type UserRole string

const (
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

type UserDetails struct {
	UserID     string   `bson:"user_id" json:"user_id"`
	Role       UserRole `bson:"role" json:"role" validate:"required,oneof=TEACHER STUDENT"`
	GivenName  string   `bson:"given_name" json:"given_name" validate:"required"`
	FamilyName string   `bson:"family_name" json:"family_name" validate:"required"`
}

type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserAuthState string

const (
	AuthLoggedIn            UserAuthState = "LOGGED_IN"
	AuthLoggedOut           UserAuthState = "LOGGED_OUT"
	AuthUserDetailsRequired UserAuthState = "USER_DETAILS_REQUIRED"
)

// Account is the stored sign-in record behind a user id.
type Account struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
}

// Session is an authenticated login. Logging out revokes it.
type Session struct {
	ID     string `json:"session_id"`
	UserID string `json:"user_id"`
}
