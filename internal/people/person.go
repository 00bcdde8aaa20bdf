package people

type Person struct {
	Email      string `json:"email,omitempty" db:"email"`
	FamilyName string `json:"family_name,omitempty" db:"family_name"`
	GivenName  string `json:"given_name,omitempty" db:"given_name"`
}

type AuthenticPerson struct {
	Person
	PasswordHash string `json:"password_hash"`
}
