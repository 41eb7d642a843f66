// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

import "mime/multipart"

// SignupReq represents the multipart form of the /users/signup endpoint.
// The name must not itself look like an email address.
type SignupReq struct {
	Name     string                `form:"name" binding:"required,notemail"`
	Email    string                `form:"email" binding:"required,email"`
	Password string                `form:"password" binding:"required,min=6"`
	Image    *multipart.FileHeader `form:"image" binding:"required"`
}
