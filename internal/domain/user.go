package domain

// Role classifies a user.
type Role string

const (
	RoleCustomer  Role = "CUSTOMER"
	RoleExecutive Role = "EXECUTIVE"
	RoleAdmin     Role = "ADMIN"
)

// User is a customer or support executive. Email and phone are unique.
type User struct {
	ID    int64
	Name  string
	Email string
	Phone string
	Role  Role
}
