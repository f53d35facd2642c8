package domain

// Op is the kind of mutation applied to a record
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Session is the authenticated state of the client
type Session struct {
	APIURL   string
	Username string
	Token    string
}

// LoggedIn reports whether the session carries a token
func (s Session) LoggedIn() bool {
	return s.Token != ""
}
