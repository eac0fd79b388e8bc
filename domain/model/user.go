package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User is an operator of the workspace dashboard.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserClaims are the JWT claims issued at login.
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}

type ReqLogin struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type ReqRegister struct {
	Name     string `json:"name"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}
