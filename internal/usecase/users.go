package usecase

import "userhub/internal/repository"

// Users bundles the User use cases over one repository.
type Users struct {
	Create *CreateUser
	Get    *GetUser
	Update *UpdateUser
	Delete *DeleteUser
	List   *ListUsers
}

func NewUsers(users repository.UserRepository) Users {
	return Users{
		Create: NewCreateUser(users),
		Get:    NewGetUser(users),
		Update: NewUpdateUser(users),
		Delete: NewDeleteUser(users),
		List:   NewListUsers(users),
	}
}
