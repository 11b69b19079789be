package transport

import "github.com/Skotchmaster/jwt_auth/internal/service"

type TokenRequest struct {
	Token string `json:"token" form:"token" validate:"required"`
}

type UserRequest struct {
	ID       uint   `json:"id"       form:"id"`
	UserName string `json:"userName" form:"userName" validate:"required,max=64"`
	FullName string `json:"fullName" form:"fullName" validate:"required,max=64"`
	Email    string `json:"email"    form:"email"    validate:"required,max=255,email"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

func (r UserRequest) Input() service.UserInput {
	return service.UserInput{
		ID:       r.ID,
		UserName: r.UserName,
		FullName: r.FullName,
		Email:    r.Email,
		Password: r.Password,
	}
}

type RoleRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=24"`
}

// AddRoleRequest accepts the user under either "userName" or "username".
type AddRoleRequest struct {
	UserName string `json:"userName" form:"userName" validate:"required_without=Username,max=64"`
	Username string `json:"username" form:"username" validate:"max=64"`
	RoleName string `json:"roleName" form:"roleName" validate:"required,max=24"`
}

func (r AddRoleRequest) User() string {
	if r.UserName != "" {
		return r.UserName
	}
	return r.Username
}
