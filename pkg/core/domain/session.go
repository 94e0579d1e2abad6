package domain

// Role separates admin and employee sessions
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Claims is the identity carried by a session token
type Claims struct {
	Role    Role
	Subject string // Admin id or employee code
	Name    string
}

// Dump is an export of collected data (links and their entries), used by the CLI
type Dump struct {
	Links       []Link       `json:"links"`
	Submissions []Submission `json:"submissions"`
}
